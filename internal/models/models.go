package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a money movement.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Kinds lists every valid transaction kind.
var Kinds = []Kind{KindIncome, KindExpense}

// ParseKind returns the Kind named by s and whether it is valid.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindIncome, KindExpense:
		return Kind(s), true
	}
	return "", false
}

// Transaction represents a single income or expense record.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Kind        Kind            `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Description string          `json:"description,omitempty"`
}

// Budget is a spending cap for one expense category in one calendar month.
type Budget struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

// BudgetStatus compares a budget against what was spent in its period.
// A negative Remaining means the budget was exceeded.
type BudgetStatus struct {
	Category  string          `json:"category"`
	Spent     decimal.Decimal `json:"spent"`
	Budgeted  decimal.Decimal `json:"budgeted"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Over reports whether spending went past the budget.
func (s BudgetStatus) Over() bool {
	return s.Remaining.IsNegative()
}

// Overage describes a category whose spending exceeded its budget.
type Overage struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Budgeted decimal.Decimal `json:"budgeted"`
	OverBy   decimal.Decimal `json:"over_by"`
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session identifies the authenticated user every ledger operation acts for.
type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// SessionFor builds the session of an authenticated user.
func SessionFor(u *User) Session {
	return Session{UserID: u.ID, Username: u.Username}
}
