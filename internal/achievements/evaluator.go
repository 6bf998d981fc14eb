package achievements

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Rewarder records the FitCoins reward for a newly unlocked achievement.
type Rewarder interface {
	RewardForAchievement(a Achievement)
}

// ProgressUpdater re-evaluates tier progress against the full unlocked set.
type ProgressUpdater interface {
	UpdateProgress(unlocked []Achievement)
}

// Evaluator owns the unlock state of the achievement catalog.
type Evaluator struct {
	mu sync.Mutex

	store    store.Store
	rewarder Rewarder
	progress ProgressUpdater
	bus      *events.Bus
	logger   *zap.Logger
	now      func() time.Time

	catalog  []Achievement
	index    map[string]int
	unlocked []Achievement
}

// NewEvaluator builds an evaluator over the compiled-in catalog and restores
// unlock state from st. rewarder and progress may be nil.
func NewEvaluator(st store.Store, rewarder Rewarder, progress ProgressUpdater, bus *events.Bus, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := Definitions()
	e := &Evaluator{
		store:    st,
		rewarder: rewarder,
		progress: progress,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
		catalog:  catalog,
		index: lo.SliceToMap(lo.Range(len(catalog)), func(i int) (string, int) {
			return catalog[i].ID, i
		}),
	}
	e.load()
	return e
}

// SetClock replaces the time source used for unlock dates.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// SetProgressUpdater attaches the tier engine after construction.
func (e *Evaluator) SetProgressUpdater(progress ProgressUpdater) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = progress
}

func (e *Evaluator) load() {
	var saved []Achievement
	err := store.LoadJSON(e.store, store.UnlockedAchievementsKey, &saved)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		e.logger.Warn("ignoring unreadable unlocked achievements", zap.Error(err))
		return
	}

	for _, s := range saved {
		i, ok := e.index[s.ID]
		if !ok {
			e.logger.Warn("skipping unknown saved achievement", zap.String("id", s.ID))
			continue
		}
		if e.catalog[i].IsUnlocked {
			continue
		}
		e.catalog[i].IsUnlocked = true
		if s.UnlockedDate != nil {
			d := *s.UnlockedDate
			e.catalog[i].UnlockedDate = &d
		}
		e.unlocked = append(e.unlocked, e.catalog[i].Clone())
	}
}

// CheckAchievement unlocks id when currentValue reaches its target. It
// reports whether this call performed the unlock. The reward and the tier
// update are both recorded before it returns.
func (e *Evaluator) CheckAchievement(id string, currentValue float64) bool {
	if !isReading(currentValue) {
		e.logger.Warn("ignoring non-finite reading", zap.String("id", id), zap.Float64("value", currentValue))
		return false
	}

	e.mu.Lock()

	i, ok := e.index[id]
	if !ok {
		e.mu.Unlock()
		e.logger.Warn("unknown achievement id", zap.String("id", id))
		return false
	}

	a := &e.catalog[i]
	e.cacheProgressLocked(*a, currentValue)

	if a.IsUnlocked || !(currentValue >= a.TargetValue()) {
		e.mu.Unlock()
		return false
	}

	now := e.now()
	a.IsUnlocked = true
	a.UnlockedDate = &now
	unlocked := a.Clone()
	e.unlocked = append(e.unlocked, unlocked)
	e.persistLocked()

	// Readers block on mu until both collaborators have run.
	if e.rewarder != nil {
		e.rewarder.RewardForAchievement(unlocked.Clone())
	}
	if e.progress != nil {
		e.progress.UpdateProgress(e.unlockedLocked())
	}
	e.mu.Unlock()

	e.logger.Info("achievement unlocked",
		zap.String("id", unlocked.ID),
		zap.Float64("value", currentValue),
		zap.Int("reward", unlocked.FitCoinsReward))

	e.bus.Publish(events.Event{
		Kind:      events.AchievementUnlocked,
		SubjectID: unlocked.ID,
		Title:     unlocked.Title,
		Message:   unlocked.Description,
		Icon:      unlocked.Icon,
		FitCoins:  unlocked.FitCoinsReward,
		At:        now,
	})
	return true
}

// CheckMetric checks every catalog achievement fed by metric and returns the
// ids unlocked by this call.
func (e *Evaluator) CheckMetric(metric Metric, value float64) []string {
	if !isReading(value) {
		e.logger.Warn("ignoring non-finite reading", zap.String("metric", string(metric)), zap.Float64("value", value))
		return nil
	}

	e.mu.Lock()
	ids := lo.FilterMap(e.catalog, func(a Achievement, _ int) (string, bool) {
		return a.ID, a.Metric == metric
	})
	e.mu.Unlock()

	var newlyUnlocked []string
	for _, id := range ids {
		if e.CheckAchievement(id, value) {
			newlyUnlocked = append(newlyUnlocked, id)
		}
	}
	return newlyUnlocked
}

func (e *Evaluator) CheckStepAchievements(steps int) []string {
	return e.CheckMetric(MetricSteps, float64(steps))
}

func (e *Evaluator) CheckStreakAchievements(days int) []string {
	return e.CheckMetric(MetricStreakDays, float64(days))
}

func (e *Evaluator) CheckNutritionAchievements(mealsLogged int) []string {
	return e.CheckMetric(MetricMealsLogged, float64(mealsLogged))
}

func (e *Evaluator) CheckWeightLossAchievements(kilogramsLost float64) []string {
	return e.CheckMetric(MetricWeightLoss, kilogramsLost)
}

// CheckSocialAchievements covers friends, packs and completed challenges.
func (e *Evaluator) CheckSocialAchievements(friends, packs, challenges int) []string {
	var out []string
	out = append(out, e.CheckMetric(MetricFriends, float64(friends))...)
	out = append(out, e.CheckMetric(MetricPacksJoined, float64(packs))...)
	out = append(out, e.CheckMetric(MetricChallenges, float64(challenges))...)
	return out
}

func (e *Evaluator) CheckSleepAchievements(hours float64) []string {
	return e.CheckMetric(MetricSleepHours, hours)
}

func (e *Evaluator) CheckHydrationAchievements(liters float64) []string {
	return e.CheckMetric(MetricWaterLiters, liters)
}

// isReading rejects NaN and infinities, which no counter can produce.
func isReading(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Progress returns currentValue as a fraction of the target of id, clamped
// to [0, 1]. Unknown ids, missing or non-positive targets and non-finite
// values yield 0.
func (e *Evaluator) Progress(id string, currentValue float64) float64 {
	def, ok := DefinitionByID(id)
	if !ok {
		return 0
	}
	return progressFraction(def, currentValue)
}

func progressFraction(a Achievement, value float64) float64 {
	t := a.TargetValue()
	if t <= 0 || !isReading(value) {
		return 0
	}
	return lo.Clamp(value/t, 0, 1)
}

type progressCache struct {
	Progress float64 `json:"progress"`
}

type valueCache struct {
	Value float64 `json:"value"`
}

func (e *Evaluator) cacheProgressLocked(a Achievement, value float64) {
	p := progressFraction(a, value)
	if a.IsUnlocked || value >= a.TargetValue() {
		p = 1
	}

	if err := store.SaveJSON(e.store, store.ProgressKey(a.ID), progressCache{Progress: p}); err != nil {
		e.logger.Error("failed to cache achievement progress", zap.String("id", a.ID), zap.Error(err))
	}
	if err := store.SaveJSON(e.store, store.CurrentValueKey(a.ID), valueCache{Value: value}); err != nil {
		e.logger.Error("failed to cache achievement value", zap.String("id", a.ID), zap.Error(err))
	}
}

// CachedProgress returns the progress fraction and raw value last written for
// id by CheckAchievement.
func (e *Evaluator) CachedProgress(id string) (progress float64, value float64, ok bool) {
	var p progressCache
	var v valueCache
	if err := store.LoadJSON(e.store, store.ProgressKey(id), &p); err != nil {
		return 0, 0, false
	}
	if err := store.LoadJSON(e.store, store.CurrentValueKey(id), &v); err != nil {
		return 0, 0, false
	}
	return p.Progress, v.Value, true
}

func (e *Evaluator) persistLocked() {
	if err := store.SaveJSON(e.store, store.UnlockedAchievementsKey, e.unlocked); err != nil {
		e.logger.Error("failed to persist unlocked achievements", zap.Error(err))
	}
}

func (e *Evaluator) unlockedLocked() []Achievement {
	return lo.Map(e.unlocked, func(a Achievement, _ int) Achievement {
		return a.Clone()
	})
}

// IsUnlocked reports whether id has been unlocked.
func (e *Evaluator) IsUnlocked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[id]
	return ok && e.catalog[i].IsUnlocked
}

// Achievement returns the current state of id.
func (e *Evaluator) Achievement(id string) (Achievement, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[id]
	if !ok {
		return Achievement{}, false
	}
	return e.catalog[i].Clone(), true
}

// Catalog returns every achievement with its current state, in catalog order.
func (e *Evaluator) Catalog() []Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()

	return lo.Map(e.catalog, func(a Achievement, _ int) Achievement {
		return a.Clone()
	})
}

func (e *Evaluator) ByCategory(category Category) []Achievement {
	return lo.Filter(e.Catalog(), func(a Achievement, _ int) bool {
		return a.Category == category
	})
}

// Unlocked returns unlocked achievements in unlock order.
func (e *Evaluator) Unlocked() []Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unlockedLocked()
}

func (e *Evaluator) UnlockedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.unlocked)
}

func (e *Evaluator) TotalCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.catalog)
}

// CompletionPercentage is the unlocked share of the catalog, 0-100.
func (e *Evaluator) CompletionPercentage() float64 {
	total := e.TotalCount()
	if total == 0 {
		return 0
	}
	return float64(e.UnlockedCount()) / float64(total) * 100
}

// SuggestIDs returns catalog ids that fuzzy-match query, best first.
func (e *Evaluator) SuggestIDs(query string, limit int) []string {
	e.mu.Lock()
	ids := lo.Map(e.catalog, func(a Achievement, _ int) string { return a.ID })
	e.mu.Unlock()

	matches := fuzzy.Find(query, ids)

	out := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Reset clears all unlock state and cached progress.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = Definitions()
	e.unlocked = nil

	if err := e.store.Delete(store.UnlockedAchievementsKey); err != nil {
		e.logger.Error("failed to delete unlocked achievements", zap.Error(err))
	}
	for _, prefix := range store.ProgressKeyPrefixes() {
		keys, err := e.store.Keys(prefix)
		if err != nil {
			e.logger.Error("failed to list progress keys", zap.String("prefix", prefix), zap.Error(err))
			continue
		}
		for _, k := range keys {
			if err := e.store.Delete(k); err != nil {
				e.logger.Error("failed to delete progress key", zap.String("key", k), zap.Error(err))
			}
		}
	}
	e.logger.Info("achievements reset")
}
