package storage

import (
	"context"
	"path/filepath"
	"testing"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db   *DB
	ctx  context.Context
	user *models.User
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	user, err := db.CreateUser(suite.ctx, "testuser", "hash")
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) insert(kind models.Kind, category, amount string, date models.Date) int64 {
	id, err := suite.db.InsertTransaction(suite.ctx, &models.Transaction{
		UserID:      suite.user.ID,
		Kind:        kind,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Description: category + " " + date.String(),
	})
	require.NoError(suite.T(), err)
	return id
}

func (suite *DBTestSuite) TestInsertAndGetTransaction() {
	id := suite.insert(models.KindExpense, "Food", "10.50", models.NewDate(2024, 3, 5))

	got, err := suite.db.GetTransaction(suite.ctx, suite.user.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, got.ID)
	assert.Equal(suite.T(), models.KindExpense, got.Kind)
	assert.Equal(suite.T(), "Food", got.Category)
	assert.True(suite.T(), decimal.RequireFromString("10.50").Equal(got.Amount))
	assert.Equal(suite.T(), "2024-03-05", got.Date.String())
	assert.Equal(suite.T(), "Food 2024-03-05", got.Description)
}

func (suite *DBTestSuite) TestGetTransactionOtherUser() {
	id := suite.insert(models.KindExpense, "Food", "10", models.NewDate(2024, 3, 5))

	other, err := suite.db.CreateUser(suite.ctx, "other", "hash")
	require.NoError(suite.T(), err)

	_, err = suite.db.GetTransaction(suite.ctx, other.ID, id)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestListTransactionsOrderAndFilters() {
	suite.insert(models.KindExpense, "Food", "5", models.NewDate(2024, 1, 10))
	suite.insert(models.KindIncome, "Salary", "1000", models.NewDate(2024, 1, 31))
	suite.insert(models.KindExpense, "Rent", "700", models.NewDate(2024, 2, 1))

	all, err := suite.db.ListTransactions(suite.ctx, TransactionFilter{UserID: suite.user.ID})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), all, 3)
	assert.Equal(suite.T(), "Rent", all[0].Category, "expected newest date first")
	assert.Equal(suite.T(), "Food", all[2].Category)

	expense := models.KindExpense
	from, to := models.MonthBounds(1, 2024)
	january, err := suite.db.ListTransactions(suite.ctx, TransactionFilter{
		UserID: suite.user.ID,
		Kind:   &expense,
		From:   &from,
		To:     &to,
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), january, 1)
	assert.Equal(suite.T(), "Food", january[0].Category)

	food := "Food"
	byCategory, err := suite.db.ListTransactions(suite.ctx, TransactionFilter{UserID: suite.user.ID, Category: &food})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), byCategory, 1)
}

func (suite *DBTestSuite) TestListTransactionsSameDateNewestIDFirst() {
	date := models.NewDate(2024, 5, 1)
	first := suite.insert(models.KindExpense, "Food", "1", date)
	second := suite.insert(models.KindExpense, "Food", "2", date)

	result, err := suite.db.ListTransactions(suite.ctx, TransactionFilter{UserID: suite.user.ID})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), second, result[0].ID)
	assert.Equal(suite.T(), first, result[1].ID)
}

func (suite *DBTestSuite) TestUpdateTransactionKeepsType() {
	id := suite.insert(models.KindExpense, "Food", "10", models.NewDate(2024, 3, 5))

	err := suite.db.UpdateTransaction(suite.ctx, &models.Transaction{
		ID:          id,
		UserID:      suite.user.ID,
		Kind:        models.KindIncome,
		Category:    "Rent",
		Amount:      decimal.NewFromInt(20),
		Date:        models.NewDate(2024, 3, 6),
		Description: "updated",
	})
	require.NoError(suite.T(), err)

	got, err := suite.db.GetTransaction(suite.ctx, suite.user.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.KindExpense, got.Kind)
	assert.Equal(suite.T(), "Rent", got.Category)
	assert.Equal(suite.T(), "updated", got.Description)
}

func (suite *DBTestSuite) TestDeleteTransaction() {
	id := suite.insert(models.KindExpense, "Food", "10", models.NewDate(2024, 3, 5))

	err := suite.db.DeleteTransaction(suite.ctx, suite.user.ID+1, id)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	require.NoError(suite.T(), suite.db.DeleteTransaction(suite.ctx, suite.user.ID, id))

	count, err := suite.db.CountTransactions(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)

	err = suite.db.DeleteTransaction(suite.ctx, suite.user.ID, id)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestInsertTransactionUnknownUser() {
	_, err := suite.db.InsertTransaction(suite.ctx, &models.Transaction{
		UserID:   suite.user.ID + 100,
		Kind:     models.KindExpense,
		Category: "Food",
		Amount:   decimal.NewFromInt(1),
		Date:     models.NewDate(2024, 1, 1),
	})
	require.Error(suite.T(), err, "foreign key should reject unknown users")
	assert.True(suite.T(), apperr.IsStore(err))
}

func (suite *DBTestSuite) TestAmountRoundTrip() {
	for _, amount := range []string{"0.01", "19.99", "1234567.89", "999999999999.99"} {
		id := suite.insert(models.KindExpense, "Food", amount, models.NewDate(2024, 7, 1))

		got, err := suite.db.GetTransaction(suite.ctx, suite.user.ID, id)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), got.Amount.IsPositive(), "amount %s", amount)
		assert.True(suite.T(), decimal.RequireFromString(amount).Equal(got.Amount), "amount %s came back as %s", amount, got.Amount)
	}
}

func (suite *DBTestSuite) TestUnstorableAmountsRejected() {
	for _, amount := range []string{"1e400", "-1e400", "1e-400"} {
		_, err := suite.db.InsertTransaction(suite.ctx, &models.Transaction{
			UserID:   suite.user.ID,
			Kind:     models.KindExpense,
			Category: "Food",
			Amount:   decimal.RequireFromString(amount),
			Date:     models.NewDate(2024, 1, 1),
		})
		assert.True(suite.T(), apperr.IsValidation(err), "amount %s", amount)

		err = suite.db.UpsertBudget(suite.ctx, models.Budget{
			UserID: suite.user.ID, Category: "Food", Amount: decimal.RequireFromString(amount), Month: 1, Year: 2024,
		})
		assert.True(suite.T(), apperr.IsValidation(err), "budget amount %s", amount)
	}

	count, err := suite.db.CountTransactions(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *DBTestSuite) TestInfiniteStoredAmountIsAnError() {
	_, err := suite.db.conn.ExecContext(suite.ctx,
		"INSERT INTO transactions (user_id, type, category, amount, date) VALUES (?, 'expense', 'Food', 9e999, '2024-01-01')",
		suite.user.ID)
	require.NoError(suite.T(), err)
	_, err = suite.db.conn.ExecContext(suite.ctx,
		"INSERT INTO budgets (user_id, category, amount, month, year) VALUES (?, 'Food', 9e999, 1, 2024)",
		suite.user.ID)
	require.NoError(suite.T(), err)

	_, err = suite.db.ListTransactions(suite.ctx, TransactionFilter{UserID: suite.user.ID})
	assert.True(suite.T(), apperr.IsStore(err))

	_, err = suite.db.ListBudgets(suite.ctx, suite.user.ID, 1, 2024)
	assert.True(suite.T(), apperr.IsStore(err))
}

func (suite *DBTestSuite) TestForeignKeysEnabled() {
	var enabled int
	require.NoError(suite.T(), suite.db.conn.QueryRowContext(suite.ctx, "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(suite.T(), 1, enabled)
}

func (suite *DBTestSuite) TestUpsertBudget() {
	budget := models.Budget{
		UserID:   suite.user.ID,
		Category: "Food",
		Amount:   decimal.NewFromInt(100),
		Month:    3,
		Year:     2024,
	}
	require.NoError(suite.T(), suite.db.UpsertBudget(suite.ctx, budget))

	budget.Amount = decimal.NewFromInt(250)
	require.NoError(suite.T(), suite.db.UpsertBudget(suite.ctx, budget))

	count, err := suite.db.CountBudgets(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)

	got, err := suite.db.GetBudget(suite.ctx, suite.user.ID, "Food", 3, 2024)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), decimal.NewFromInt(250).Equal(got.Amount))

	_, err = suite.db.GetBudget(suite.ctx, suite.user.ID, "Food", 4, 2024)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestListBudgetsInInsertionOrder() {
	for _, c := range []string{"Rent", "Food", "Health"} {
		require.NoError(suite.T(), suite.db.UpsertBudget(suite.ctx, models.Budget{
			UserID: suite.user.ID, Category: c, Amount: decimal.NewFromInt(10), Month: 6, Year: 2024,
		}))
	}
	require.NoError(suite.T(), suite.db.UpsertBudget(suite.ctx, models.Budget{
		UserID: suite.user.ID, Category: "Food", Amount: decimal.NewFromInt(10), Month: 7, Year: 2024,
	}))

	budgets, err := suite.db.ListBudgets(suite.ctx, suite.user.ID, 6, 2024)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), budgets, 3)
	assert.Equal(suite.T(), "Rent", budgets[0].Category)
	assert.Equal(suite.T(), "Food", budgets[1].Category)
	assert.Equal(suite.T(), "Health", budgets[2].Category)
}

func (suite *DBTestSuite) TestUsers() {
	_, err := suite.db.CreateUser(suite.ctx, "testuser", "hash2")
	assert.Error(suite.T(), err, "usernames are unique")

	byName, err := suite.db.GetUserByUsername(suite.ctx, "testuser")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, byName.ID)

	_, err = suite.db.GetUserByUsername(suite.ctx, "nobody")
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *DBTestSuite) TestClosedDatabase() {
	require.NoError(suite.T(), suite.db.Close())

	_, err := suite.db.CountTransactions(suite.ctx, suite.user.ID)
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperr.IsStore(err))
}

func TestReopenKeepsFileData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "ledger.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	require.NoError(t, db.Reopen(ctx))

	user, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, db.InMemory())
	assert.Equal(t, path, db.Path())
}

func TestForeignKeysSurviveReopen(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Reopen(ctx))

	_, err = db.InsertTransaction(ctx, &models.Transaction{
		UserID:   42,
		Kind:     models.KindExpense,
		Category: "Food",
		Amount:   decimal.NewFromInt(1),
		Date:     models.NewDate(2024, 1, 1),
	})
	assert.True(t, apperr.IsStore(err), "unknown user must be rejected on the new connection")
}

func TestNewDBInvalidPath(t *testing.T) {
	_, err := NewDB(t.TempDir())
	assert.Error(t, err)
}

// Test suite runners
func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}
