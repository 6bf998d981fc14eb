package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind identifies a state transition emitted by the engines.
type Kind string

const (
	AchievementUnlocked Kind = "achievement_unlocked"
	LevelUnlocked       Kind = "level_unlocked"
	TransactionPosted   Kind = "transaction_posted"
)

// Event describes a state transition. SubjectID is the achievement id, the
// level id or the transaction id depending on Kind.
type Event struct {
	Kind      Kind
	SubjectID string
	Title     string
	Message   string
	Icon      string
	FitCoins  int
	At        time.Time
}

// DefaultBuffer is the channel capacity used when Subscribe is given a
// non-positive size.
const DefaultBuffer = 64

// Bus fans events out to subscriber channels. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	logger      *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subscribers: make(map[int]chan Event),
		logger:      logger,
	}
}

// Subscribe registers a listener. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber. A nil Bus discards events.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("kind", string(e.Kind)),
				zap.String("subject", e.SubjectID))
		}
	}
}
