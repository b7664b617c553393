package domain

import (
	"time"
)

// Wallet holds an identity's custody of value in the single fungible unit.
// One wallet per identity.
type Wallet struct {
	Identity  Identity  `json:"identity"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanDebit reports whether the wallet holds at least amount.
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
