package levels

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Rewarder records the FitCoins reward for a newly unlocked tier.
type Rewarder interface {
	RewardForLevel(l Level)
}

// Engine aggregates unlocked achievements per tier and unlocks tiers.
type Engine struct {
	mu sync.Mutex

	store    store.Store
	rewarder Rewarder
	bus      *events.Bus
	logger   *zap.Logger
	now      func() time.Time

	catalog []achievements.Achievement
	levels  []Level
	current int
}

// NewEngine restores tier state from st. catalog is the achievement set
// tiers draw their members from.
func NewEngine(st store.Store, catalog []achievements.Achievement, rewarder Rewarder, bus *events.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:    st,
		rewarder: rewarder,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
		catalog:  lo.Map(catalog, func(a achievements.Achievement, _ int) achievements.Achievement { return a.Clone() }),
		levels:   Definitions(),
	}
	e.load()
	e.annotateLocked(nil)
	e.current = currentLevelID(e.levels)
	return e
}

func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// load merges saved tiers into the defaults by id. A saved record can only
// unlock a tier, never lock one.
func (e *Engine) load() {
	var saved []Level
	err := store.LoadJSON(e.store, store.LevelProgressKey, &saved)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		e.logger.Warn("ignoring unreadable level progress", zap.Error(err))
		return
	}

	for _, s := range saved {
		i, ok := e.indexOf(s.ID)
		if !ok {
			e.logger.Warn("skipping unknown saved level", zap.Int("id", s.ID))
			continue
		}
		if !s.IsUnlocked || e.levels[i].IsUnlocked {
			continue
		}
		e.levels[i].IsUnlocked = true
		if s.UnlockedDate != nil {
			d := *s.UnlockedDate
			e.levels[i].UnlockedDate = &d
		}
	}
}

func (e *Engine) indexOf(id int) (int, bool) {
	_, i, ok := lo.FindIndexOf(e.levels, func(l Level) bool { return l.ID == id })
	return i, ok
}

// annotateLocked rebuilds every tier's member list, marking the members
// present in unlocked.
func (e *Engine) annotateLocked(unlocked []achievements.Achievement) {
	byID := lo.KeyBy(unlocked, func(a achievements.Achievement) string { return a.ID })

	for i := range e.levels {
		id := e.levels[i].ID
		members := lo.Filter(e.catalog, func(a achievements.Achievement, _ int) bool {
			return a.Level == id
		})
		e.levels[i].Achievements = lo.Map(members, func(a achievements.Achievement, _ int) achievements.Achievement {
			out := a.Clone()
			out.IsUnlocked = false
			out.UnlockedDate = nil
			if u, ok := byID[a.ID]; ok {
				out.IsUnlocked = true
				if u.UnlockedDate != nil {
					d := *u.UnlockedDate
					out.UnlockedDate = &d
				}
			}
			return out
		})
	}
}

// UpdateProgress re-evaluates every tier against the full unlocked set.
// Each locked tier whose unlocked member count reaches its requirement is
// unlocked and rewarded before this returns.
func (e *Engine) UpdateProgress(unlocked []achievements.Achievement) {
	e.mu.Lock()

	e.annotateLocked(unlocked)

	var newlyUnlocked []Level
	now := e.now()
	for i := range e.levels {
		l := &e.levels[i]
		if l.IsUnlocked || l.UnlockedCount() < l.RequiredAchievements {
			continue
		}
		l.IsUnlocked = true
		t := now
		l.UnlockedDate = &t
		newlyUnlocked = append(newlyUnlocked, l.Clone())

		if e.rewarder != nil {
			e.rewarder.RewardForLevel(l.Clone())
		}
	}

	if len(newlyUnlocked) > 0 {
		e.persistLocked()
	}
	e.current = currentLevelID(e.levels)
	e.mu.Unlock()

	for _, l := range newlyUnlocked {
		e.logger.Info("level unlocked",
			zap.Int("id", l.ID),
			zap.String("name", l.Name),
			zap.Int("reward", l.FitCoinsReward))

		e.bus.Publish(events.Event{
			Kind:      events.LevelUnlocked,
			SubjectID: levelSubject(l.ID),
			Title:     l.Name,
			Message:   l.Description,
			FitCoins:  l.FitCoinsReward,
			At:        now,
		})
	}
}

func levelSubject(id int) string {
	return "level_" + strconv.Itoa(id)
}

func currentLevelID(levels []Level) int {
	current := 0
	for _, l := range levels {
		if l.IsUnlocked && l.ID > current {
			current = l.ID
		}
	}
	return current
}

func (e *Engine) persistLocked() {
	records := lo.Map(e.levels, func(l Level, _ int) Level {
		out := l.Clone()
		out.Achievements = nil
		return out
	})
	if err := store.SaveJSON(e.store, store.LevelProgressKey, records); err != nil {
		e.logger.Error("failed to persist level progress", zap.Error(err))
	}
}

// Levels returns every tier in ascending id order.
func (e *Engine) Levels() []Level {
	e.mu.Lock()
	defer e.mu.Unlock()

	return lo.Map(e.levels, func(l Level, _ int) Level { return l.Clone() })
}

func (e *Engine) Level(id int) (Level, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.indexOf(id)
	if !ok {
		return Level{}, false
	}
	return e.levels[i].Clone(), true
}

// CurrentLevel returns the highest unlocked tier.
func (e *Engine) CurrentLevel() (Level, bool) {
	e.mu.Lock()
	current := e.current
	e.mu.Unlock()

	if current == 0 {
		return Level{}, false
	}
	return e.Level(current)
}

// NextLevel returns the tier following id.
func (e *Engine) NextLevel(id int) (Level, bool) {
	return e.Level(id + 1)
}

// Progress is the unlocked share of the tier's requirement, clamped to 1.
// Tiers with no requirement are complete; unknown tiers report 0.
func (e *Engine) Progress(id int) float64 {
	l, ok := e.Level(id)
	if !ok {
		return 0
	}
	if l.RequiredAchievements <= 0 {
		return 1
	}
	return lo.Clamp(float64(l.UnlockedCount())/float64(l.RequiredAchievements), 0, 1)
}

// OverallCompletion is the fraction of tiers unlocked.
func (e *Engine) OverallCompletion() float64 {
	levels := e.Levels()
	if len(levels) == 0 {
		return 0
	}
	unlocked := lo.CountBy(levels, func(l Level) bool { return l.IsUnlocked })
	return float64(unlocked) / float64(len(levels))
}

// Reset restores the tier defaults and removes the saved state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.levels = Definitions()
	e.annotateLocked(nil)
	e.current = currentLevelID(e.levels)

	if err := e.store.Delete(store.LevelProgressKey); err != nil {
		e.logger.Error("failed to delete level progress", zap.Error(err))
	}
	e.logger.Info("levels reset")
}
