package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus(zap.NewNop())

	first, unsubFirst := bus.Subscribe(4)
	defer unsubFirst()
	second, unsubSecond := bus.Subscribe(4)
	defer unsubSecond()

	bus.Publish(Event{Kind: AchievementUnlocked, SubjectID: "first_steps"})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case e := <-ch:
			assert.Equal(t, AchievementUnlocked, e.Kind)
			assert.Equal(t, "first_steps", e.SubjectID)
			assert.False(t, e.At.IsZero(), "timestamp should be filled in")
		default:
			t.Fatal("expected event to be buffered")
		}
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := NewBus(zap.New(core))

	ch, unsub := bus.Subscribe(1)
	defer unsub()

	bus.Publish(Event{Kind: TransactionPosted, SubjectID: "a"})
	bus.Publish(Event{Kind: TransactionPosted, SubjectID: "b"})

	e := <-ch
	assert.Equal(t, "a", e.SubjectID)
	assert.Len(t, ch, 0)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "dropping event for slow subscriber", logs.All()[0].Message)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(nil)
	ch, unsub := bus.Subscribe(0)

	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel
	assert.NotPanics(t, func() {
		bus.Publish(Event{Kind: LevelUnlocked})
	})
}

func TestNilBusDiscards(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(Event{Kind: LevelUnlocked})
	})
}
