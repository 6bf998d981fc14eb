package notify

import (
	"context"
	"sync"
	"time"

	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/pkg/debounce"
	"go.uber.org/zap"
)

// Banner is a user-facing celebration for an unlock or level-up.
type Banner struct {
	Kind     events.Kind
	Heading  string
	Title    string
	Message  string
	Icon     string
	FitCoins int
	At       time.Time
}

// Notifier turns engine events into banners. It keeps a queue of banners
// not yet shown plus the banner currently on screen, which is dismissed
// after a quiet period.
type Notifier struct {
	mu      sync.Mutex
	queue   []Banner
	current *Banner
	dismiss func()
	logger  *zap.Logger
}

// NewNotifier creates a notifier whose current banner is cleared once
// displayFor passes without a newer one. A non-positive displayFor keeps
// banners until replaced.
func NewNotifier(displayFor time.Duration, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{logger: logger}
	if displayFor > 0 {
		n.dismiss = debounce.Debounce(displayFor, n.clearCurrent)
	}
	return n
}

func bannerFor(e events.Event) (Banner, bool) {
	b := Banner{
		Kind:     e.Kind,
		Title:    e.Title,
		Message:  e.Message,
		Icon:     e.Icon,
		FitCoins: e.FitCoins,
		At:       e.At,
	}

	switch e.Kind {
	case events.AchievementUnlocked:
		b.Heading = "Achievement Unlocked!"
	case events.LevelUnlocked:
		b.Heading = "Level Up!"
		if b.Icon == "" {
			b.Icon = "⭐"
		}
	default:
		return Banner{}, false
	}
	return b, true
}

// Handle queues a banner for e. Events other than unlocks are ignored.
func (n *Notifier) Handle(e events.Event) bool {
	b, ok := bannerFor(e)
	if !ok {
		return false
	}

	n.mu.Lock()
	n.queue = append(n.queue, b)
	current := b
	n.current = &current
	n.mu.Unlock()

	n.logger.Debug("banner queued", zap.String("kind", string(b.Kind)), zap.String("title", b.Title))
	if n.dismiss != nil {
		n.dismiss()
	}
	return true
}

// Listen handles events from ch until it is closed or ctx is done.
func (n *Notifier) Listen(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			n.Handle(e)
		}
	}
}

// Pending returns and clears the queued banners, oldest first.
func (n *Notifier) Pending() []Banner {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.queue
	n.queue = nil
	return out
}

// Current returns the banner on screen, if any.
func (n *Notifier) Current() (Banner, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Banner{}, false
	}
	return *n.current, true
}

func (n *Notifier) clearCurrent() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
}
