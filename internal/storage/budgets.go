package storage

import (
	"context"
	"database/sql"
	"errors"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/models"
)

// UpsertBudget sets the budget for (user, category, month, year), overwriting the
// amount when the key already exists. The row keeps its original id.
func (db *DB) UpsertBudget(ctx context.Context, b models.Budget) error {
	conn, err := db.handle()
	if err != nil {
		return apperr.Store("upsert budget", err)
	}

	amount, err := amountValue(b.Amount)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, amount, month, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, month, year) DO UPDATE SET amount = excluded.amount
	`, b.UserID, b.Category, amount, b.Month, b.Year)
	return apperr.Store("upsert budget", err)
}

// GetBudget retrieves one budget. It returns ErrNotFound when none is set.
func (db *DB) GetBudget(ctx context.Context, userID int64, category string, month, year int) (*models.Budget, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("get budget", err)
	}

	row := conn.QueryRowContext(ctx, `
		SELECT id, user_id, category, amount, month, year FROM budgets
		WHERE user_id = ? AND category = ? AND month = ? AND year = ?
	`, userID, category, month, year)

	var b models.Budget
	err = row.Scan(&b.ID, &b.UserID, &b.Category, amountColumn{&b.Amount}, &b.Month, &b.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("get budget", err)
	}
	return &b, nil
}

// ListBudgets returns the budgets of one month in the order they were first set.
func (db *DB) ListBudgets(ctx context.Context, userID int64, month, year int) ([]models.Budget, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("list budgets", err)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, user_id, category, amount, month, year FROM budgets
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY id
	`, userID, month, year)
	if err != nil {
		return nil, apperr.Store("list budgets", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, amountColumn{&b.Amount}, &b.Month, &b.Year); err != nil {
			return nil, apperr.Store("list budgets", err)
		}
		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list budgets", err)
	}
	return budgets, nil
}

// CountBudgets returns how many budget rows userID owns.
func (db *DB) CountBudgets(ctx context.Context, userID int64) (int, error) {
	conn, err := db.handle()
	if err != nil {
		return 0, apperr.Store("count budgets", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, apperr.Store("count budgets", err)
	}
	return count, nil
}
