package coach

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/coins"
	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/internal/levels"
	"github.com/fitglide/fitglide/internal/notify"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CoachManager owns the three gamification engines and the banner sink.
// It is constructed once at startup and passed to whatever needs it.
type CoachManager struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time

	bus          *events.Bus
	ledger       *coins.Ledger
	levels       *levels.Engine
	achievements *achievements.Evaluator
	notifier     *notify.Notifier

	cancel      context.CancelFunc
	unsubscribe func()
	listenDone  chan struct{}
}

// NewCoachManager wires the engines over st. Banners stay current for
// bannerDuration.
func NewCoachManager(st store.Store, zapLogger *zap.Logger, bannerDuration time.Duration) *CoachManager {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	bus := events.NewBus(zapLogger.Named("events"))
	ledger := coins.NewLedger(st, bus, zapLogger.Named("coins"))
	levelEngine := levels.NewEngine(st, achievements.Definitions(), ledger, bus, zapLogger.Named("levels"))
	evaluator := achievements.NewEvaluator(st, ledger, levelEngine, bus, zapLogger.Named("achievements"))

	m := &CoachManager{
		store:        st,
		logger:       zapLogger,
		now:          time.Now,
		bus:          bus,
		ledger:       ledger,
		levels:       levelEngine,
		achievements: evaluator,
		notifier:     notify.NewNotifier(bannerDuration, zapLogger.Named("notify")),
		listenDone:   make(chan struct{}),
	}

	// Tier state may lag behind unlocks if a previous run failed to persist it
	levelEngine.UpdateProgress(evaluator.Unlocked())

	ch, unsubscribe := bus.Subscribe(events.DefaultBuffer)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.unsubscribe = unsubscribe
	go func() {
		defer close(m.listenDone)
		m.notifier.Listen(ctx, ch)
	}()

	return m
}

// Close stops the banner listener after it has handled every event already
// published. Pending banners remain readable.
func (m *CoachManager) Close() {
	m.unsubscribe()
	<-m.listenDone
	m.cancel()
}

// SetClock replaces the time source of every engine.
func (m *CoachManager) SetClock(now func() time.Time) {
	m.now = now
	m.ledger.SetClock(now)
	m.levels.SetClock(now)
	m.achievements.SetClock(now)
}

func (m *CoachManager) Ledger() *coins.Ledger {
	return m.ledger
}

func (m *CoachManager) Levels() *levels.Engine {
	return m.levels
}

func (m *CoachManager) Achievements() *achievements.Evaluator {
	return m.achievements
}

// RecordMetric feeds a metric reading to the evaluator and returns the ids
// of achievements it unlocked.
func (m *CoachManager) RecordMetric(metric achievements.Metric, value float64) ([]string, error) {
	if !lo.Contains(achievements.Metrics, metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("metric %s: value %v is not finite", metric, value)
	}

	unlocked := m.achievements.CheckMetric(metric, value)
	m.logger.Debug("metric recorded",
		zap.String("metric", string(metric)),
		zap.Float64("value", value),
		zap.Strings("unlocked", unlocked))
	return unlocked, nil
}

func (m *CoachManager) RecordSteps(steps int) []string {
	return m.achievements.CheckStepAchievements(steps)
}

func (m *CoachManager) RecordStreak(days int) []string {
	return m.achievements.CheckStreakAchievements(days)
}

func (m *CoachManager) RecordMeals(mealsLogged int) []string {
	return m.achievements.CheckNutritionAchievements(mealsLogged)
}

func (m *CoachManager) RecordWeightLoss(kilograms float64) []string {
	return m.achievements.CheckWeightLossAchievements(kilograms)
}

func (m *CoachManager) RecordSocial(friends, packs, challenges int) []string {
	return m.achievements.CheckSocialAchievements(friends, packs, challenges)
}

func (m *CoachManager) RecordSleep(hours float64) []string {
	return m.achievements.CheckSleepAchievements(hours)
}

func (m *CoachManager) RecordHydration(liters float64) []string {
	return m.achievements.CheckHydrationAchievements(liters)
}

// CompleteOnboarding unlocks the onboarding milestone.
func (m *CoachManager) CompleteOnboarding() []string {
	return m.achievements.CheckMetric(achievements.MetricOnboarding, 1)
}

// GetPendingNotifications returns and clears the queued banners.
func (m *CoachManager) GetPendingNotifications() []notify.Banner {
	return m.notifier.Pending()
}

// CurrentBanner returns the banner that has not yet been auto-dismissed.
func (m *CoachManager) CurrentBanner() (notify.Banner, bool) {
	return m.notifier.Current()
}

// Reset clears unlocks, tiers and the wallet.
func (m *CoachManager) Reset() {
	m.achievements.Reset()
	m.levels.Reset()
	m.ledger.Reset()
	m.logger.Info("gamification state reset")
}
