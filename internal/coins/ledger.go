package coins

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/fitglide/fitglide/internal/events"
	"github.com/fitglide/fitglide/internal/levels"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Ledger owns the FitCoins wallet. Every mutation is persisted before it
// returns.
type Ledger struct {
	mu sync.Mutex

	store  store.Store
	bus    *events.Bus
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	wallet Wallet
}

func NewLedger(st store.Store, bus *events.Bus, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Ledger{
		store:  st,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	l.load()
	return l
}

// SetClock replaces the time source used for transaction timestamps and the
// earned-in-window queries.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Ledger) load() {
	var saved Wallet
	err := store.LoadJSON(l.store, store.WalletKey, &saved)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		l.logger.Warn("ignoring unreadable wallet", zap.Error(err))
		return
	}

	// Drop entries that could never have been posted
	history := lo.Filter(saved.TransactionHistory, func(tx Transaction, _ int) bool {
		return tx.Amount > 0
	})
	var applied int
	l.wallet, applied = replay(history)
	if applied < len(history) {
		l.logger.Error("saved wallet history overdraws or overflows, keeping valid prefix",
			zap.Int("kept", applied),
			zap.Int("discarded", len(history)-applied),
			zap.String("firstDiscarded", history[applied].ID))
		return
	}

	if saved.Balance != l.wallet.Balance || saved.TotalEarned != l.wallet.TotalEarned || saved.TotalSpent != l.wallet.TotalSpent {
		l.logger.Warn("saved wallet totals disagree with history, using history",
			zap.Int("savedBalance", saved.Balance),
			zap.Int("balance", l.wallet.Balance))
	}
}

func (l *Ledger) newTransactionLocked(amount int, typ TransactionType, description, relatedID string) Transaction {
	return Transaction{
		ID:                   l.newID(),
		Amount:               amount,
		Type:                 typ,
		Description:          description,
		Timestamp:            l.now(),
		RelatedAchievementID: relatedID,
	}
}

// commitLocked applies tx and writes the resulting snapshot.
func (l *Ledger) commitLocked(tx Transaction) {
	l.wallet = l.wallet.apply(tx)
	if err := store.SaveJSON(l.store, store.WalletKey, l.wallet); err != nil {
		l.logger.Error("failed to persist wallet", zap.Error(err))
	}
}

func (l *Ledger) announce(tx Transaction) {
	l.logger.Debug("transaction posted",
		zap.String("id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.Int("amount", tx.Amount))

	l.bus.Publish(events.Event{
		Kind:      events.TransactionPosted,
		SubjectID: tx.ID,
		Title:     string(tx.Type),
		Message:   tx.Description,
		FitCoins:  tx.Amount,
		At:        tx.Timestamp,
	})
}

func (l *Ledger) credit(amount int, typ TransactionType, reason, relatedID string) {
	if amount <= 0 {
		l.logger.Warn("ignoring non-positive credit",
			zap.String("type", string(typ)),
			zap.Int("amount", amount),
			zap.String("reason", reason))
		return
	}

	l.mu.Lock()
	if !l.wallet.accepts(Transaction{Amount: amount, Type: typ}) {
		earned := l.wallet.TotalEarned
		l.mu.Unlock()
		l.logger.Warn("ignoring credit that would overflow the wallet",
			zap.String("type", string(typ)),
			zap.Int("amount", amount),
			zap.Int("totalEarned", earned),
			zap.String("reason", reason))
		return
	}
	tx := l.newTransactionLocked(amount, typ, reason, relatedID)
	l.commitLocked(tx)
	l.mu.Unlock()

	l.announce(tx)
}

// Earn credits amount. relatedAchievementID may be empty.
func (l *Ledger) Earn(amount int, reason string, relatedAchievementID string) {
	l.credit(amount, Earned, reason, relatedAchievementID)
}

// AwardBonus credits amount tagged as a bonus.
func (l *Ledger) AwardBonus(amount int, reason string) {
	l.credit(amount, Bonus, reason, "")
}

// Spend debits amount and reports whether the balance covered it. A
// declined spend leaves the wallet untouched.
func (l *Ledger) Spend(amount int, reason string) bool {
	if amount <= 0 {
		return false
	}

	l.mu.Lock()
	if amount > l.wallet.Balance {
		balance := l.wallet.Balance
		l.mu.Unlock()
		l.logger.Info("spend declined", zap.Int("amount", amount), zap.Int("balance", balance))
		return false
	}
	tx := l.newTransactionLocked(amount, Spent, reason, "")
	l.commitLocked(tx)
	l.mu.Unlock()

	l.announce(tx)
	return true
}

// ApplyPenalty debits min(amount, balance) and returns the deducted amount.
// Nothing is recorded when the deduction is zero.
func (l *Ledger) ApplyPenalty(amount int, reason string) int {
	if amount <= 0 {
		return 0
	}

	l.mu.Lock()
	deducted := min(amount, l.wallet.Balance)
	if deducted == 0 {
		l.mu.Unlock()
		return 0
	}
	tx := l.newTransactionLocked(deducted, Penalty, reason, "")
	l.commitLocked(tx)
	l.mu.Unlock()

	l.logger.Info("penalty applied", zap.Int("requested", amount), zap.Int("deducted", deducted))
	l.announce(tx)
	return deducted
}

func (l *Ledger) RewardForAchievement(a achievements.Achievement) {
	if a.FitCoinsReward <= 0 {
		return
	}
	l.Earn(a.FitCoinsReward, fmt.Sprintf("Achievement unlocked: %s", a.Title), a.ID)
}

func (l *Ledger) RewardForLevel(lvl levels.Level) {
	if lvl.FitCoinsReward <= 0 {
		return
	}
	l.Earn(lvl.FitCoinsReward, fmt.Sprintf("Level up: %s", lvl.Name), "")
}

// Wallet returns a snapshot of the wallet.
func (l *Ledger) Wallet() Wallet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wallet.clone()
}

func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wallet.Balance
}

// RecentTransactions returns up to limit transactions, newest first. A
// non-positive limit returns the whole history.
func (l *Ledger) RecentTransactions(limit int) []Transaction {
	l.mu.Lock()
	history := lo.Reverse(l.wallet.clone().TransactionHistory)
	l.mu.Unlock()

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// TransactionsByType returns matching transactions in posting order.
func (l *Ledger) TransactionsByType(t TransactionType) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return lo.Filter(l.wallet.TransactionHistory, func(tx Transaction, _ int) bool {
		return tx.Type == t
	})
}

// EarnedSince sums earned and bonus amounts posted at or after since.
func (l *Ledger) EarnedSince(since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return lo.SumBy(l.wallet.TransactionHistory, func(tx Transaction) int {
		if !tx.Type.IsCredit() || tx.Timestamp.Before(since) {
			return 0
		}
		return tx.Amount
	})
}

// EarnedToday sums credits since local midnight.
func (l *Ledger) EarnedToday() int {
	now := l.clock()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return l.EarnedSince(midnight)
}

// EarnedThisWeek sums credits over the last 7 days.
func (l *Ledger) EarnedThisWeek() int {
	return l.EarnedSince(l.clock().AddDate(0, 0, -7))
}

func (l *Ledger) clock() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now()
}

// Reset empties the wallet and persists the empty state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.wallet = Wallet{}
	if err := store.SaveJSON(l.store, store.WalletKey, l.wallet); err != nil {
		l.logger.Error("failed to persist wallet", zap.Error(err))
	}
	l.logger.Info("wallet reset")
}
