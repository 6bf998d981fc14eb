package coach

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/coins"
	"github.com/fitglide/fitglide/internal/notify"
	"github.com/fitglide/fitglide/internal/styles"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
)

const (
	rule         = "══════════════════════════════════════════════════════════════════"
	descWidth    = 56
	barWidth     = 30
	smallBar     = 20
	maxPerHeader = 3
)

var categoryNames = map[achievements.Category]string{
	achievements.CategoryFitness:   "🏃 FITNESS",
	achievements.CategoryNutrition: "🥗 NUTRITION",
	achievements.CategorySocial:    "🤝 SOCIAL",
	achievements.CategoryStreak:    "🔥 STREAK",
	achievements.CategoryMilestone: "🏆 MILESTONE",
	achievements.CategoryWellness:  "🌙 WELLNESS",
	achievements.CategoryChallenge: "🎯 CHALLENGE",
}

func writeLine(sb *strings.Builder, style func(string) string, text string) {
	sb.WriteString(style(text))
	sb.WriteString("\n")
}

func writeWrapped(sb *strings.Builder, style func(string) string, indent, text string) {
	for _, line := range strings.Split(wordwrap.String(text, descWidth), "\n") {
		writeLine(sb, style, indent+line)
	}
}

// RenderDashboard renders the level, wallet and achievement summary.
func (m *CoachManager) RenderDashboard() string {
	var sb strings.Builder

	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.HEADER, "  🏅 FITGLIDE")
	writeLine(&sb, styles.HEADER, rule)

	if current, ok := m.levels.CurrentLevel(); ok {
		writeLine(&sb, styles.BODY, fmt.Sprintf("  LEVEL %d · %s (%s)", current.ID, current.Name, current.LocalizedName))
		if next, ok := m.levels.NextLevel(current.ID); ok {
			progress := m.levels.Progress(next.ID)
			writeLine(&sb, styles.BODY, fmt.Sprintf("  %s %.0f%% to %s", renderProgressBar(progress, barWidth), progress*100, next.Name))
		} else {
			writeLine(&sb, styles.SUCCESS, "  Top tier reached!")
		}
	}
	writeLine(&sb, styles.BODY, "")

	wallet := m.ledger.Wallet()
	writeLine(&sb, styles.COINS, fmt.Sprintf("  🪙 %s FitCoins", humanize.Comma(int64(wallet.Balance))))
	writeLine(&sb, styles.BODY, fmt.Sprintf("  ├── Earned today: %s", humanize.Comma(int64(m.ledger.EarnedToday()))))
	writeLine(&sb, styles.BODY, fmt.Sprintf("  ├── Earned this week: %s", humanize.Comma(int64(m.ledger.EarnedThisWeek()))))
	writeLine(&sb, styles.BODY, fmt.Sprintf("  └── Lifetime: %s earned, %s spent",
		humanize.Comma(int64(wallet.TotalEarned)), humanize.Comma(int64(wallet.TotalSpent))))
	writeLine(&sb, styles.BODY, "")

	writeLine(&sb, styles.BODY, fmt.Sprintf("  🏆 %d / %d achievements (%.0f%%)",
		m.achievements.UnlockedCount(), m.achievements.TotalCount(), m.achievements.CompletionPercentage()))
	recent := lo.Reverse(m.achievements.Unlocked())
	for _, a := range lo.Slice(recent, 0, maxPerHeader) {
		writeLine(&sb, styles.SUCCESS, fmt.Sprintf("  │ ✨ %s %s", a.Icon, a.Title))
	}

	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.MUTED, "  fitglide [record|wallet|achievements|achievement|levels|reset]")
	return sb.String()
}

// RenderWallet renders the balance and the newest transactions.
func (m *CoachManager) RenderWallet(limit int) string {
	var sb strings.Builder

	wallet := m.ledger.Wallet()
	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.HEADER, "  🪙 WALLET")
	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.COINS, fmt.Sprintf("  Balance: %s", humanize.Comma(int64(wallet.Balance))))
	writeLine(&sb, styles.BODY, fmt.Sprintf("  Earned: %s  Spent: %s",
		humanize.Comma(int64(wallet.TotalEarned)), humanize.Comma(int64(wallet.TotalSpent))))
	writeLine(&sb, styles.BODY, "")

	txs := m.ledger.RecentTransactions(limit)
	if len(txs) == 0 {
		writeLine(&sb, styles.MUTED, "  No transactions yet")
	}
	now := m.now()
	for _, tx := range txs {
		style := styles.SUCCESS
		if !tx.Type.IsCredit() {
			style = styles.ERROR
		}
		writeLine(&sb, style, fmt.Sprintf("  %s %-7s %s  %s", signed(tx), tx.Type, tx.Description,
			styles.MUTED(humanize.RelTime(tx.Timestamp, now, "ago", "from now"))))
	}
	writeLine(&sb, styles.HEADER, rule)
	return sb.String()
}

func signed(tx coins.Transaction) string {
	if tx.Type.IsCredit() {
		return fmt.Sprintf("%+6d", tx.Amount)
	}
	return fmt.Sprintf("%+6d", -tx.Amount)
}

// RenderAchievements renders the catalog grouped by category. An empty
// category renders all of them.
func (m *CoachManager) RenderAchievements(category achievements.Category) string {
	var sb strings.Builder

	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.HEADER, "  🏆 ACHIEVEMENTS")
	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.BODY, fmt.Sprintf("  %d / %d Unlocked (%.0f%%)",
		m.achievements.UnlockedCount(), m.achievements.TotalCount(), m.achievements.CompletionPercentage()))
	writeLine(&sb, styles.BODY, "")

	categories := achievements.Categories
	if category != "" {
		categories = []achievements.Category{category}
	}

	for _, cat := range categories {
		list := m.achievements.ByCategory(cat)
		if len(list) == 0 {
			continue
		}
		unlocked := lo.CountBy(list, func(a achievements.Achievement) bool { return a.IsUnlocked })
		writeLine(&sb, styles.HEADER, fmt.Sprintf("  %s (%d/%d)", categoryNames[cat], unlocked, len(list)))

		for _, a := range list {
			writeLine(&sb, styles.BODY, "  │ "+m.achievementLine(a))
		}
		writeLine(&sb, styles.BODY, "")
	}

	writeLine(&sb, styles.HEADER, rule)
	return sb.String()
}

func (m *CoachManager) achievementLine(a achievements.Achievement) string {
	status := "🔒"
	detail := fmt.Sprintf("+%d", a.FitCoinsReward)
	if a.IsUnlocked {
		status = "✨"
		detail = "UNLOCKED"
	} else if p, _, ok := m.achievements.CachedProgress(a.ID); ok && p > 0 {
		status = "⏳"
		detail = fmt.Sprintf("%.0f%%", p*100)
	}
	return fmt.Sprintf("%s %s %s - %s %s", status, a.Icon, a.Title, a.UnlockCondition, detail)
}

// RenderAchievement renders one achievement with its progress toward value.
func (m *CoachManager) RenderAchievement(a achievements.Achievement, value float64) string {
	var sb strings.Builder

	writeLine(&sb, styles.HEADER, fmt.Sprintf("  %s %s", a.Icon, a.Title))
	writeWrapped(&sb, styles.BODY, "  ", a.Description)
	writeLine(&sb, styles.MUTED, fmt.Sprintf("  Tier %d · %s · %d FitCoins", a.Level, a.Category, a.FitCoinsReward))

	if a.IsUnlocked {
		when := ""
		if a.UnlockedDate != nil {
			when = " " + humanize.RelTime(*a.UnlockedDate, m.now(), "ago", "from now")
		}
		writeLine(&sb, styles.SUCCESS, "  ✨ Unlocked"+when)
		return sb.String()
	}

	progress := m.achievements.Progress(a.ID, value)
	writeLine(&sb, styles.BODY, fmt.Sprintf("  %s %.0f%%  %s", renderProgressBar(progress, smallBar), progress*100, a.UnlockCondition))
	return sb.String()
}

// RenderLevels renders every tier with its progress.
func (m *CoachManager) RenderLevels() string {
	var sb strings.Builder

	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.HEADER, "  ⭐ LEVELS")
	writeLine(&sb, styles.HEADER, rule)
	writeLine(&sb, styles.BODY, fmt.Sprintf("  %.0f%% of tiers unlocked", m.levels.OverallCompletion()*100))
	writeLine(&sb, styles.BODY, "")

	for _, l := range m.levels.Levels() {
		status := "🔒"
		style := styles.BODY
		if l.IsUnlocked {
			status = "✅"
			style = styles.SUCCESS
		}
		writeLine(&sb, style, fmt.Sprintf("  %s %d. %s (%s)  +%d", status, l.ID, l.Name, l.LocalizedName, l.FitCoinsReward))
		writeLine(&sb, styles.MUTED, "     "+l.Description)

		progress := m.levels.Progress(l.ID)
		writeLine(&sb, styles.BODY, fmt.Sprintf("     %s %d/%d", renderProgressBar(progress, smallBar), l.UnlockedCount(), l.RequiredAchievements))
		writeLine(&sb, styles.BODY, "")
	}

	writeLine(&sb, styles.HEADER, rule)
	return sb.String()
}

// RenderBanners renders unlock celebrations, oldest first.
func RenderBanners(banners []notify.Banner) string {
	var sb strings.Builder
	for _, b := range banners {
		body := fmt.Sprintf("%s %s\n%s", b.Icon, b.Heading, b.Title)
		if b.Message != "" {
			body += "\n" + wordwrap.String(b.Message, descWidth)
		}
		if b.FitCoins > 0 {
			body += "\n" + fmt.Sprintf("+%d FitCoins", b.FitCoins)
		}
		sb.WriteString(styles.BANNER(body))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderProgressBar(progress float64, width int) string {
	progress = lo.Clamp(progress, 0, 1)

	filled := int(progress * float64(width))
	empty := width - filled

	return strings.Repeat("█", filled) + strings.Repeat("░", empty)
}
