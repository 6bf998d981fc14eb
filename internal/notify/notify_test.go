package notify

import (
	"context"
	"testing"
	"time"

	"github.com/fitglide/fitglide/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHandleQueuesUnlockBanners(t *testing.T) {
	n := NewNotifier(0, zaptest.NewLogger(t))

	assert.True(t, n.Handle(events.Event{Kind: events.AchievementUnlocked, Title: "First Steps", Icon: "👟", FitCoins: 10}))
	assert.True(t, n.Handle(events.Event{Kind: events.LevelUnlocked, Title: "Explorer", FitCoins: 100}))
	assert.False(t, n.Handle(events.Event{Kind: events.TransactionPosted, Title: "earned"}))

	pending := n.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "Achievement Unlocked!", pending[0].Heading)
	assert.Equal(t, "First Steps", pending[0].Title)
	assert.Equal(t, "Level Up!", pending[1].Heading)
	assert.Equal(t, "⭐", pending[1].Icon)

	assert.Empty(t, n.Pending(), "pending drains")

	current, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "Explorer", current.Title)
}

func TestCurrentBannerIsDismissed(t *testing.T) {
	n := NewNotifier(30*time.Millisecond, nil)

	n.Handle(events.Event{Kind: events.AchievementUnlocked, Title: "First Meal"})
	_, ok := n.Current()
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, n.Pending(), 1, "dismissing does not drop queued banners")
}

func TestNewerBannerSupersedesDismiss(t *testing.T) {
	n := NewNotifier(80*time.Millisecond, nil)

	n.Handle(events.Event{Kind: events.AchievementUnlocked, Title: "one"})
	time.Sleep(50 * time.Millisecond)
	n.Handle(events.Event{Kind: events.AchievementUnlocked, Title: "two"})
	time.Sleep(50 * time.Millisecond)

	current, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "two", current.Title)
}

func TestListenStopsWhenChannelCloses(t *testing.T) {
	bus := events.NewBus(nil)
	ch, unsub := bus.Subscribe(4)
	n := NewNotifier(0, nil)

	done := make(chan struct{})
	go func() {
		n.Listen(context.Background(), ch)
		close(done)
	}()

	bus.Publish(events.Event{Kind: events.LevelUnlocked, Title: "Explorer"})
	unsub()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after unsubscribe")
	}
	assert.Len(t, n.Pending(), 1)
}

func TestListenStopsOnCancel(t *testing.T) {
	ch := make(chan events.Event)
	n := NewNotifier(0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		n.Listen(ctx, ch)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
