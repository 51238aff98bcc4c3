// Package budget tracks monthly spending caps per expense category.
package budget

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/category"
	"bookkeeper/internal/ledger"
	"bookkeeper/internal/models"
	"bookkeeper/internal/storage"
)

const (
	MinYear = 1900
	MaxYear = 2100
)

// Store is the budget persistence. *storage.DB implements it.
type Store interface {
	UpsertBudget(ctx context.Context, b models.Budget) error
	GetBudget(ctx context.Context, userID int64, category string, month, year int) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID int64, month, year int) ([]models.Budget, error)
}

// TransactionLister is the part of the ledger the tracker reads spending from.
//
//go:generate mockery --name TransactionLister --inpackage --filename mock_transaction_lister_test.go
type TransactionLister interface {
	List(ctx context.Context, sess models.Session, filter ledger.Filter) ([]models.Transaction, error)
}

// Tracker sets budgets and compares them against ledger spending.
type Tracker struct {
	store  Store
	ledger TransactionLister
	log    logrus.FieldLogger
}

// NewTracker creates a Tracker. A nil logger falls back to the logrus standard logger.
func NewTracker(store Store, lister TransactionLister, log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{store: store, ledger: lister, log: log.WithField("component", "budget")}
}

// Set records the cap for one category and month, replacing any earlier amount.
func (t *Tracker) Set(ctx context.Context, sess models.Session, cat string, amount decimal.Decimal, month, year int) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	if !category.ValidExpense(cat) {
		return apperr.Invalid("category", "%q is not an expense category", cat)
	}
	if amount.IsNegative() {
		return apperr.Invalid("amount", "%s must not be negative", amount)
	}
	if err := models.CheckAmount(amount); err != nil {
		return apperr.Invalid("amount", "%v", err)
	}
	if err := ValidatePeriod(month, year); err != nil {
		return err
	}

	err := t.store.UpsertBudget(ctx, models.Budget{
		UserID:   sess.UserID,
		Category: cat,
		Amount:   amount,
		Month:    month,
		Year:     year,
	})
	if err != nil {
		return err
	}

	t.log.WithFields(logrus.Fields{
		"user_id":  sess.UserID,
		"category": cat,
		"amount":   amount.String(),
		"month":    month,
		"year":     year,
	}).Info("Budget.Set.Complete")
	return nil
}

// Get returns the cap for one category and month, or zero when none is set.
func (t *Tracker) Get(ctx context.Context, sess models.Session, cat string, month, year int) (decimal.Decimal, error) {
	if err := checkSession(sess); err != nil {
		return decimal.Zero, err
	}
	b, err := t.store.GetBudget(ctx, sess.UserID, cat, month, year)
	if errors.Is(err, storage.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return b.Amount, nil
}

// SpentInMonth sums the expenses of one category dated within the month, both ends inclusive.
func (t *Tracker) SpentInMonth(ctx context.Context, sess models.Session, cat string, month, year int) (decimal.Decimal, error) {
	if err := checkSession(sess); err != nil {
		return decimal.Zero, err
	}
	spent, err := t.spentByCategory(ctx, sess, month, year)
	if err != nil {
		return decimal.Zero, err
	}
	return spent[cat], nil
}

// Exceeded lists every budget of the month whose category spending is above its cap.
// The result follows the order budgets were first set and is empty when none were.
func (t *Tracker) Exceeded(ctx context.Context, sess models.Session, month, year int) ([]models.Overage, error) {
	statuses, err := t.Status(ctx, sess, month, year)
	if err != nil {
		return nil, err
	}

	overages := []models.Overage{}
	for _, s := range statuses {
		if !s.Over() {
			continue
		}
		overages = append(overages, models.Overage{
			Category: s.Category,
			Spent:    s.Spent,
			Budgeted: s.Budgeted,
			OverBy:   s.Spent.Sub(s.Budgeted),
		})
	}
	return overages, nil
}

// Status reports spent against budgeted for every budget of the month.
func (t *Tracker) Status(ctx context.Context, sess models.Session, month, year int) ([]models.BudgetStatus, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	budgets, err := t.store.ListBudgets(ctx, sess.UserID, month, year)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []models.BudgetStatus{}, nil
	}

	spent, err := t.spentByCategory(ctx, sess, month, year)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		statuses = append(statuses, models.BudgetStatus{
			Category:  b.Category,
			Spent:     s,
			Budgeted:  b.Amount,
			Remaining: b.Amount.Sub(s),
		})
	}
	return statuses, nil
}

func (t *Tracker) spentByCategory(ctx context.Context, sess models.Session, month, year int) (map[string]decimal.Decimal, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	first, last := models.MonthBounds(month, year)
	expenses, err := t.ledger.List(ctx, sess, ledger.Filter{
		Kind:      string(models.KindExpense),
		StartDate: first.String(),
		EndDate:   last.String(),
	})
	if err != nil {
		return nil, err
	}

	spent := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.Kind != models.KindExpense {
			continue
		}
		spent[e.Category] = spent[e.Category].Add(e.Amount)
	}
	return spent, nil
}

// ValidatePeriod checks a month in [1,12] and a year in [MinYear,MaxYear].
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperr.Invalid("month", "%d must be between 1 and 12", month)
	}
	if year < MinYear || year > MaxYear {
		return apperr.Invalid("year", "%d must be between %d and %d", year, MinYear, MaxYear)
	}
	return nil
}

func checkSession(sess models.Session) error {
	if sess.UserID <= 0 {
		return apperr.Invalid("session", "no authenticated user")
	}
	return nil
}
