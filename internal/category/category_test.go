package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookkeeper/internal/models"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.KindIncome, "Salary"))
	assert.True(t, Valid(models.KindExpense, "Food"))
	assert.False(t, Valid(models.KindIncome, "Food"), "categories belong to one kind")
	assert.False(t, Valid(models.KindExpense, "food"), "matching is case-sensitive")
	assert.False(t, Valid(models.Kind("transfer"), "Food"))

	assert.True(t, ValidExpense("Other Expense"))
	assert.False(t, ValidExpense("Gift"))
}

func TestForReturnsCopy(t *testing.T) {
	names := For(models.KindExpense)
	assert.Len(t, names, 9)
	names[0] = "Changed"
	assert.Equal(t, "Food", For(models.KindExpense)[0])

	assert.Len(t, For(models.KindIncome), 5)
	assert.Nil(t, For(models.Kind("transfer")))
}
