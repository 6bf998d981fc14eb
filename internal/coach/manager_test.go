package coach

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/coins"
	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/internal/notify"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/fitglide/fitglide/internal/styles"
	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	styles.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

var testNow = time.Date(2024, 8, 20, 18, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, st store.Store) *CoachManager {
	t.Helper()
	m := NewCoachManager(st, zaptest.NewLogger(t), 0)
	m.SetClock(func() time.Time { return testNow })
	t.Cleanup(m.Close)
	return m
}

func bannersOfKind(banners []notify.Banner, kind events.Kind) []notify.Banner {
	return lo.Filter(banners, func(b notify.Banner, _ int) bool { return b.Kind == kind })
}

func TestUnlockIsRewardedBeforeReturn(t *testing.T) {
	m := newTestManager(t, store.NewMemory())

	assert.Empty(t, m.RecordSteps(500))
	assert.Zero(t, m.Ledger().Wallet().TotalEarned)

	assert.Equal(t, []string{"first_steps"}, m.RecordSteps(1200))
	w := m.Ledger().Wallet()
	assert.Equal(t, 10, w.TotalEarned)
	require.Len(t, w.TransactionHistory, 1)
	assert.Equal(t, "first_steps", w.TransactionHistory[0].RelatedAchievementID)

	l, _ := m.Levels().Level(1)
	assert.Equal(t, 1, l.UnlockedCount(), "the tier holding first_steps is re-evaluated")
}

func TestLevelUpFlow(t *testing.T) {
	m := newTestManager(t, store.NewMemory())

	m.RecordSteps(6000)
	m.RecordStreak(3)
	l, _ := m.Levels().Level(2)
	assert.False(t, l.IsUnlocked)

	m.RecordSocial(0, 1, 0)

	l, _ = m.Levels().Level(2)
	assert.True(t, l.IsUnlocked)
	current, _ := m.Levels().CurrentLevel()
	assert.Equal(t, "Explorer", current.Name)

	// 10 + 25 + 25 + 20 for achievements, 100 for the tier
	assert.Equal(t, 180, m.Ledger().Balance())
	assert.Len(t, m.Ledger().TransactionsByType(coins.Earned), 5)

	m.Close()
	banners := m.GetPendingNotifications()
	assert.Len(t, bannersOfKind(banners, events.AchievementUnlocked), 4)
	levelBanners := bannersOfKind(banners, events.LevelUnlocked)
	require.Len(t, levelBanners, 1)
	assert.Equal(t, "Level Up!", levelBanners[0].Heading)
	assert.Equal(t, 100, levelBanners[0].FitCoins)
}

func TestStateSurvivesRestart(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	first := newTestManager(t, st)
	first.RecordSteps(6000)
	first.RecordStreak(3)
	first.RecordSocial(0, 1, 0)
	first.Ledger().Spend(30, "water bottle")

	second := newTestManager(t, st)
	assert.Equal(t, 150, second.Ledger().Balance())
	assert.True(t, second.Achievements().IsUnlocked("pack_joiner"))
	l, _ := second.Levels().Level(2)
	assert.True(t, l.IsUnlocked)
	assert.Equal(t, 3, l.UnlockedCount())
	assert.Len(t, second.Ledger().TransactionsByType(coins.Earned), 5, "restarting does not reward again")
}

func TestStartupCatchesUpMissingTierState(t *testing.T) {
	st := store.NewMemory()
	first := newTestManager(t, st)
	first.RecordSteps(6000)
	first.RecordStreak(3)
	first.RecordSocial(0, 1, 0)
	require.NoError(t, st.Delete(store.LevelProgressKey))

	second := newTestManager(t, st)
	l, _ := second.Levels().Level(2)
	assert.True(t, l.IsUnlocked)
}

func TestRecordMetric(t *testing.T) {
	m := newTestManager(t, store.NewMemory())

	got, err := m.RecordMetric(achievements.MetricWaterLiters, 2.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"hydration_starter", "hydration_hero"}, got)

	_, err = m.RecordMetric("heartbeats", 80)
	assert.Error(t, err)

	_, err = m.RecordMetric(achievements.MetricSteps, math.NaN())
	assert.ErrorContains(t, err, "not finite")
	assert.False(t, m.Achievements().IsUnlocked("first_steps"))

	assert.Equal(t, []string{"welcome_aboard"}, m.CompleteOnboarding())
	assert.Empty(t, m.CompleteOnboarding())
}

func TestEntryPoints(t *testing.T) {
	m := newTestManager(t, store.NewMemory())

	assert.Equal(t, []string{"first_meal"}, m.RecordMeals(1))
	assert.Equal(t, []string{"weight_loss_1kg"}, m.RecordWeightLoss(1))
	assert.Equal(t, []string{"good_night", "well_rested"}, m.RecordSleep(8))
	assert.Equal(t, []string{"hydration_starter"}, m.RecordHydration(1))
	assert.Equal(t, []string{"first_friend"}, m.RecordSocial(1, 0, 0))
}

func TestReset(t *testing.T) {
	st := store.NewMemory()
	m := newTestManager(t, st)
	m.RecordSteps(6000)
	m.RecordStreak(3)
	m.RecordSocial(0, 1, 0)

	m.Reset()

	assert.Zero(t, m.Ledger().Balance())
	assert.Zero(t, m.Achievements().UnlockedCount())
	current, _ := m.Levels().CurrentLevel()
	assert.Equal(t, 1, current.ID)

	reloaded := newTestManager(t, st)
	assert.Zero(t, reloaded.Ledger().Balance())
	assert.Zero(t, reloaded.Achievements().UnlockedCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	m := NewCoachManager(store.NewMemory(), nil, time.Second)
	m.Close()
	assert.NotPanics(t, m.Close)
}
