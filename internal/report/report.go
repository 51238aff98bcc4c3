// Package report aggregates ledger data into monthly and yearly summaries.
package report

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bookkeeper/internal/budget"
	"bookkeeper/internal/ledger"
	"bookkeeper/internal/models"
)

// TransactionLister is the part of the ledger reports read from.
type TransactionLister interface {
	List(ctx context.Context, sess models.Session, filter ledger.Filter) ([]models.Transaction, error)
}

// OverageChecker supplies the budget overages merged into monthly reports.
type OverageChecker interface {
	Exceeded(ctx context.Context, sess models.Session, month, year int) ([]models.Overage, error)
}

// MonthlyReport summarizes one calendar month.
// Categories without activity are absent from the subtotal maps.
type MonthlyReport struct {
	Month             int
	Year              int
	Income            []models.Transaction
	Expenses          []models.Transaction
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Net               decimal.Decimal
	IncomeByCategory  map[string]decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
	ExpenseStats      []CategoryStat
	Overages          []models.Overage
}

// HasIncome reports whether any income was recorded in the month.
func (r *MonthlyReport) HasIncome() bool {
	return len(r.Income) > 0
}

// HasExpenses reports whether any expense was recorded in the month.
func (r *MonthlyReport) HasExpenses() bool {
	return len(r.Expenses) > 0
}

// MonthTotals is one row of a yearly breakdown.
type MonthTotals struct {
	Month   int
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// YearlyReport summarizes a calendar year month by month.
// Months always holds all twelve months, January first.
type YearlyReport struct {
	Year         int
	Months       [12]MonthTotals
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
}

// Engine builds reports. It never writes.
type Engine struct {
	ledger   TransactionLister
	overages OverageChecker
	log      logrus.FieldLogger
}

// NewEngine creates an Engine. A nil logger falls back to the logrus standard logger.
func NewEngine(lister TransactionLister, overages OverageChecker, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{ledger: lister, overages: overages, log: log.WithField("component", "report")}
}

// Monthly builds the report of one month, including its budget overages.
func (e *Engine) Monthly(ctx context.Context, sess models.Session, month, year int) (*MonthlyReport, error) {
	if err := budget.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	first, last := models.MonthBounds(month, year)
	transactions, err := e.ledger.List(ctx, sess, ledger.Filter{StartDate: first.String(), EndDate: last.String()})
	if err != nil {
		return nil, err
	}

	r := &MonthlyReport{
		Month:             month,
		Year:              year,
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		IncomeByCategory:  make(map[string]decimal.Decimal),
		ExpenseByCategory: make(map[string]decimal.Decimal),
	}

	for _, t := range transactions {
		switch t.Kind {
		case models.KindIncome:
			r.Income = append(r.Income, t)
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
			r.IncomeByCategory[t.Category] = r.IncomeByCategory[t.Category].Add(t.Amount)
		case models.KindExpense:
			r.Expenses = append(r.Expenses, t)
			r.TotalExpense = r.TotalExpense.Add(t.Amount)
			r.ExpenseByCategory[t.Category] = r.ExpenseByCategory[t.Category].Add(t.Amount)
		}
	}
	r.Net = r.TotalIncome.Sub(r.TotalExpense)
	r.ExpenseStats = CategoryStats(r.Expenses)

	r.Overages, err = e.overages.Exceeded(ctx, sess, month, year)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"user_id":      sess.UserID,
		"month":        month,
		"year":         year,
		"transactions": len(transactions),
		"overages":     len(r.Overages),
	}).Debug("Report.Monthly.Complete")

	return r, nil
}

// Yearly builds the month-by-month report of one year.
func (e *Engine) Yearly(ctx context.Context, sess models.Session, year int) (*YearlyReport, error) {
	if err := budget.ValidatePeriod(1, year); err != nil {
		return nil, err
	}

	first, last := models.YearBounds(year)
	transactions, err := e.ledger.List(ctx, sess, ledger.Filter{StartDate: first.String(), EndDate: last.String()})
	if err != nil {
		return nil, err
	}

	r := &YearlyReport{Year: year, TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for i := range r.Months {
		r.Months[i] = MonthTotals{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}

	for _, t := range transactions {
		m := &r.Months[t.Date.Month()-1]
		switch t.Kind {
		case models.KindIncome:
			m.Income = m.Income.Add(t.Amount)
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
		case models.KindExpense:
			m.Expense = m.Expense.Add(t.Amount)
			r.TotalExpense = r.TotalExpense.Add(t.Amount)
		}
	}

	for i := range r.Months {
		r.Months[i].Net = r.Months[i].Income.Sub(r.Months[i].Expense)
	}
	r.Net = r.TotalIncome.Sub(r.TotalExpense)

	e.log.WithFields(logrus.Fields{
		"user_id":      sess.UserID,
		"year":         year,
		"transactions": len(transactions),
	}).Debug("Report.Yearly.Complete")

	return r, nil
}
