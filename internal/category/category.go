// Package category holds the fixed income and expense taxonomy.
package category

import (
	"slices"

	"bookkeeper/internal/models"
)

var (
	income = [...]string{"Salary", "Freelance", "Investments", "Gift", "Other Income"}

	expense = [...]string{
		"Food", "Rent", "Utilities", "Transport", "Entertainment",
		"Shopping", "Health", "Education", "Other Expense",
	}
)

// For returns a copy of the categories allowed for kind, in display order.
// Unknown kinds have no categories.
func For(kind models.Kind) []string {
	switch kind {
	case models.KindIncome:
		return slices.Clone(income[:])
	case models.KindExpense:
		return slices.Clone(expense[:])
	}
	return nil
}

// Valid reports whether name is a category of kind. Matching is case-sensitive.
func Valid(kind models.Kind, name string) bool {
	switch kind {
	case models.KindIncome:
		return slices.Contains(income[:], name)
	case models.KindExpense:
		return slices.Contains(expense[:], name)
	}
	return false
}

// ValidExpense reports whether name is an expense category.
func ValidExpense(name string) bool {
	return Valid(models.KindExpense, name)
}
