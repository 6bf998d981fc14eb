package coins

import (
	"math"
	"slices"
	"time"
)

type TransactionType string

const (
	Earned  TransactionType = "earned"
	Spent   TransactionType = "spent"
	Bonus   TransactionType = "bonus"
	Penalty TransactionType = "penalty"
)

// IsCredit reports whether the type adds to the balance.
func (t TransactionType) IsCredit() bool {
	return t == Earned || t == Bonus
}

// Transaction is an immutable ledger entry. Amount is always positive; Type
// decides its sign.
type Transaction struct {
	ID                   string          `json:"id"`
	Amount               int             `json:"amount"`
	Type                 TransactionType `json:"type"`
	Description          string          `json:"description"`
	Timestamp            time.Time       `json:"timestamp"`
	RelatedAchievementID string          `json:"relatedAchievementId,omitempty"`
}

// Wallet is a balance snapshot with its full history. Balance always equals
// TotalEarned minus TotalSpent.
type Wallet struct {
	Balance            int           `json:"balance"`
	TotalEarned        int           `json:"totalEarned"`
	TotalSpent         int           `json:"totalSpent"`
	TransactionHistory []Transaction `json:"transactionHistory"`
}

// apply returns a new wallet with tx appended. The receiver is not modified.
func (w Wallet) apply(tx Transaction) Wallet {
	next := Wallet{
		Balance:     w.Balance,
		TotalEarned: w.TotalEarned,
		TotalSpent:  w.TotalSpent,
		// Clip forces append to copy instead of writing into shared backing storage
		TransactionHistory: append(slices.Clip(w.TransactionHistory), tx),
	}

	if tx.Type.IsCredit() {
		next.Balance += tx.Amount
		next.TotalEarned += tx.Amount
	} else {
		next.Balance -= tx.Amount
		next.TotalSpent += tx.Amount
	}
	return next
}

// accepts reports whether tx can be applied without overdrawing the balance
// or overflowing the totals. TotalEarned bounds Balance, so guarding it
// covers both.
func (w Wallet) accepts(tx Transaction) bool {
	if tx.Amount <= 0 {
		return false
	}
	if tx.Type.IsCredit() {
		return tx.Amount <= math.MaxInt-w.TotalEarned
	}
	return tx.Amount <= w.Balance
}

func (w Wallet) clone() Wallet {
	w.TransactionHistory = slices.Clone(w.TransactionHistory)
	return w
}

// replay rebuilds the totals from the history alone. It stops at the first
// transaction the wallet cannot accept and returns how many were applied.
func replay(history []Transaction) (Wallet, int) {
	var w Wallet
	for i, tx := range history {
		if !w.accepts(tx) {
			return w, i
		}
		w = w.apply(tx)
	}
	return w, len(history)
}
