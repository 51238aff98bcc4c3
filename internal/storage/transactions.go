package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/models"
)

const transactionColumns = "id, user_id, type, category, amount, date, COALESCE(description, '')"

// TransactionFilter narrows ListTransactions. Nil fields do not filter.
type TransactionFilter struct {
	UserID   int64
	Kind     *models.Kind
	Category *string
	From     *models.Date
	To       *models.Date
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var kind string
	if err := row.Scan(&t.ID, &t.UserID, &kind, &t.Category, amountColumn{&t.Amount}, &t.Date, &t.Description); err != nil {
		return nil, err
	}
	t.Kind = models.Kind(kind)
	return &t, nil
}

// InsertTransaction stores t and returns the id assigned to it.
func (db *DB) InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error) {
	conn, err := db.handle()
	if err != nil {
		return 0, apperr.Store("insert transaction", err)
	}

	amount, err := amountValue(t.Amount)
	if err != nil {
		return 0, err
	}

	result, err := conn.ExecContext(ctx,
		"INSERT INTO transactions (user_id, type, category, amount, date, description) VALUES (?, ?, ?, ?, ?, ?)",
		t.UserID, string(t.Kind), t.Category, amount, t.Date, t.Description,
	)
	if err != nil {
		return 0, apperr.Store("insert transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperr.Store("insert transaction", err)
	}
	return id, nil
}

// GetTransaction retrieves a transaction owned by userID. It returns ErrNotFound
// when the id does not exist or belongs to someone else.
func (db *DB) GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("get transaction", err)
	}

	row := conn.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		id, userID,
	)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("get transaction", err)
	}
	return t, nil
}

// UpdateTransaction rewrites the mutable fields of t. The type column is never touched.
func (db *DB) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	conn, err := db.handle()
	if err != nil {
		return apperr.Store("update transaction", err)
	}

	amount, err := amountValue(t.Amount)
	if err != nil {
		return err
	}

	result, err := conn.ExecContext(ctx,
		"UPDATE transactions SET category = ?, amount = ?, date = ?, description = ? WHERE id = ? AND user_id = ?",
		t.Category, amount, t.Date, t.Description, t.ID, t.UserID,
	)
	if err != nil {
		return apperr.Store("update transaction", err)
	}
	return affectedOne(result, "update transaction")
}

// DeleteTransaction removes a transaction owned by userID. It returns ErrNotFound
// when nothing was deleted.
func (db *DB) DeleteTransaction(ctx context.Context, userID, id int64) error {
	conn, err := db.handle()
	if err != nil {
		return apperr.Store("delete transaction", err)
	}

	result, err := conn.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return apperr.Store("delete transaction", err)
	}
	return affectedOne(result, "delete transaction")
}

// ListTransactions returns the transactions matching filter, newest date first.
func (db *DB) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("list transactions", err)
	}

	var query strings.Builder
	query.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?")
	args := []any{filter.UserID}

	if filter.Kind != nil {
		query.WriteString(" AND type = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.From != nil {
		query.WriteString(" AND date >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query.WriteString(" AND date <= ?")
		args = append(args, *filter.To)
	}
	query.WriteString(" ORDER BY date DESC, id DESC")

	rows, err := conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, apperr.Store("list transactions", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Store("list transactions", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list transactions", err)
	}
	return transactions, nil
}

// CountTransactions returns how many transactions userID owns.
func (db *DB) CountTransactions(ctx context.Context, userID int64) (int, error) {
	conn, err := db.handle()
	if err != nil {
		return 0, apperr.Store("count transactions", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, apperr.Store("count transactions", err)
	}
	return count, nil
}

func affectedOne(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperr.Store(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
