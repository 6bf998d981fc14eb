package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/coach"
	"github.com/fitglide/fitglide/internal/styles"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

const usage = `  fitglide [dashboard]                 show level, wallet and recent unlocks
  fitglide record <metric> <value>     record a metric reading
  fitglide wallet                      show balance and recent transactions
  fitglide earn <amount> [reason]      credit FitCoins
  fitglide bonus <amount> [reason]     credit bonus FitCoins
  fitglide spend <amount> [reason]     spend FitCoins
  fitglide penalty <amount> [reason]   deduct FitCoins, never below zero
  fitglide achievements [category]     browse achievements
  fitglide achievement <id> [value]    show one achievement, optionally checking value
  fitglide levels                      show tier progress
  fitglide reset                       clear all progress`

// run executes one subcommand against m and writes its output to out.
func run(m *coach.CoachManager, args []string, limit int, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"dashboard"}
	}

	switch args[0] {
	case "dashboard":
		fmt.Fprint(out, m.RenderDashboard())
	case "record":
		return runRecord(m, args[1:], out)
	case "wallet":
		fmt.Fprint(out, m.RenderWallet(limit))
	case "earn", "bonus", "spend", "penalty":
		return runTransaction(m, args[0], args[1:], out)
	case "achievements":
		return runAchievements(m, args[1:], out)
	case "achievement":
		return runAchievement(m, args[1:], out)
	case "levels":
		fmt.Fprint(out, m.RenderLevels())
	case "reset":
		m.Reset()
		fmt.Fprintln(out, styles.SUCCESS("All progress cleared."))
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}

func runRecord(m *coach.CoachManager, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: fitglide record <metric> <value>")
	}

	metric := achievements.Metric(args[0])
	if !lo.Contains(achievements.Metrics, metric) {
		names := lo.Map(achievements.Metrics, func(known achievements.Metric, _ int) string { return string(known) })
		return fmt.Errorf("unknown metric %q%s", args[0], didYouMean(args[0], names))
	}

	value, err := parseReading(args[1])
	if err != nil {
		return err
	}

	unlocked, err := m.RecordMetric(metric, value)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, styles.BODY(fmt.Sprintf("Recorded %s = %s", metric, args[1])))
	if len(unlocked) == 0 {
		fmt.Fprintln(out, styles.MUTED("No new achievements."))
		return nil
	}
	for _, id := range unlocked {
		title := id
		if a, ok := m.Achievements().Achievement(id); ok {
			title = a.Title
		}
		fmt.Fprintln(out, styles.SUCCESS(fmt.Sprintf("Unlocked %s (%s)", title, id)))
	}
	return nil
}

// parseReading accepts finite decimal readings only.
func parseReading(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid value %q: must be a finite number", s)
	}
	return v, nil
}

func runTransaction(m *coach.CoachManager, kind string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fitglide %s <amount> [reason]", kind)
	}

	amount, err := strconv.Atoi(args[0])
	if err != nil || amount <= 0 {
		return fmt.Errorf("amount must be a positive whole number, got %q", args[0])
	}
	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = kind
	}

	ledger := m.Ledger()
	switch kind {
	case "earn":
		ledger.Earn(amount, reason, "")
	case "bonus":
		ledger.AwardBonus(amount, reason)
	case "spend":
		if !ledger.Spend(amount, reason) {
			return fmt.Errorf("spend declined: balance is %d", ledger.Balance())
		}
	case "penalty":
		deducted := ledger.ApplyPenalty(amount, reason)
		if deducted < amount {
			fmt.Fprintln(out, styles.MUTED(fmt.Sprintf("Penalty clamped to %d.", deducted)))
		}
	}

	fmt.Fprintln(out, styles.COINS(fmt.Sprintf("Balance: %d", ledger.Balance())))
	return nil
}

func runAchievements(m *coach.CoachManager, args []string, out io.Writer) error {
	var category achievements.Category
	if len(args) > 0 {
		category = achievements.Category(args[0])
		if !lo.Contains(achievements.Categories, category) {
			names := lo.Map(achievements.Categories, func(c achievements.Category, _ int) string { return string(c) })
			return fmt.Errorf("unknown category %q%s", args[0], didYouMean(args[0], names))
		}
	}

	fmt.Fprint(out, m.RenderAchievements(category))
	return nil
}

func runAchievement(m *coach.CoachManager, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fitglide achievement <id> [value]")
	}

	id := args[0]
	if _, ok := m.Achievements().Achievement(id); !ok {
		return fmt.Errorf("unknown achievement %q%s", id, suggest(m.Achievements().SuggestIDs(id, 3)))
	}

	var value float64
	if len(args) > 1 {
		v, err := parseReading(args[1])
		if err != nil {
			return err
		}
		value = v
		m.Achievements().CheckAchievement(id, value)
	}

	a, _ := m.Achievements().Achievement(id)
	fmt.Fprint(out, m.RenderAchievement(a, value))
	return nil
}

// didYouMean suggests the closest candidates to input, or nothing.
func didYouMean(input string, candidates []string) string {
	matches := fuzzy.Find(input, candidates)
	return suggest(lo.Map(lo.Slice(matches, 0, 3), func(m fuzzy.Match, _ int) string { return m.Str }))
}

func suggest(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %s?)", strings.Join(names, ", "))
}
