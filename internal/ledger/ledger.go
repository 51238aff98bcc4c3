// Package ledger validates, stores and queries income and expense transactions.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/category"
	"bookkeeper/internal/models"
	"bookkeeper/internal/storage"
)

// Store is the persistence the ledger needs. *storage.DB implements it.
type Store interface {
	InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error)
	GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, userID int64) (int, error)
}

// Entry is the caller-supplied content of a transaction.
type Entry struct {
	Kind        string
	Category    string
	Amount      decimal.Decimal
	Date        string
	Description string
}

// Filter narrows List. Empty fields do not filter. A Kind or date that does
// not parse is ignored rather than rejected.
type Filter struct {
	Kind      string
	StartDate string
	EndDate   string
}

// Ledger owns every transaction read and write.
type Ledger struct {
	store Store
	log   logrus.FieldLogger
}

// New creates a Ledger. A nil logger falls back to the logrus standard logger.
func New(store Store, log logrus.FieldLogger) *Ledger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{store: store, log: log.WithField("component", "ledger")}
}

// Add validates entry and records it for the session user.
func (l *Ledger) Add(ctx context.Context, sess models.Session, entry Entry) (*models.Transaction, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	kind, ok := models.ParseKind(entry.Kind)
	if !ok {
		return nil, apperr.Invalid("kind", "%q must be one of income, expense", entry.Kind)
	}

	t, err := build(kind, entry)
	if err != nil {
		return nil, err
	}
	t.UserID = sess.UserID

	id, err := l.store.InsertTransaction(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	l.log.WithFields(logrus.Fields{
		"user_id":  sess.UserID,
		"id":       id,
		"type":     t.Kind,
		"category": t.Category,
		"amount":   t.Amount.String(),
	}).Info("Ledger.Add.Complete")

	return t, nil
}

// Update rewrites the category, amount, date and description of a transaction.
// The kind is immutable: an entry whose Kind differs from the stored one is rejected.
func (l *Ledger) Update(ctx context.Context, sess models.Session, id int64, entry Entry) (*models.Transaction, error) {
	current, err := l.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	if entry.Kind != string(current.Kind) {
		return nil, apperr.Invalid("kind", "cannot change from %q to %q", current.Kind, entry.Kind)
	}

	t, err := build(current.Kind, entry)
	if err != nil {
		return nil, err
	}
	t.ID = current.ID
	t.UserID = current.UserID

	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("transaction", id)
		}
		return nil, err
	}

	l.log.WithFields(logrus.Fields{"user_id": sess.UserID, "id": id}).Info("Ledger.Update.Complete")
	return t, nil
}

// Delete removes a transaction owned by the session user.
func (l *Ledger) Delete(ctx context.Context, sess models.Session, id int64) error {
	if err := checkSession(sess); err != nil {
		return err
	}

	if err := l.store.DeleteTransaction(ctx, sess.UserID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("transaction", id)
		}
		return err
	}

	l.log.WithFields(logrus.Fields{"user_id": sess.UserID, "id": id}).Info("Ledger.Delete.Complete")
	return nil
}

// Get returns one transaction owned by the session user.
func (l *Ledger) Get(ctx context.Context, sess models.Session, id int64) (*models.Transaction, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	t, err := l.store.GetTransaction(ctx, sess.UserID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("transaction", id)
	}
	return t, err
}

// List returns the session user's transactions matching filter, newest date first.
func (l *Ledger) List(ctx context.Context, sess models.Session, filter Filter) ([]models.Transaction, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	query := storage.TransactionFilter{UserID: sess.UserID}

	if filter.Kind != "" {
		if kind, ok := models.ParseKind(filter.Kind); ok {
			query.Kind = &kind
		} else {
			l.log.WithField("type", filter.Kind).Warn("Ledger.List.IgnoredFilter")
		}
	}
	query.From = l.optionalDate("start_date", filter.StartDate)
	query.To = l.optionalDate("end_date", filter.EndDate)

	transactions, err := l.store.ListTransactions(ctx, query)
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{"user_id": sess.UserID, "count": len(transactions)}).Debug("Ledger.List.Complete")
	return transactions, nil
}

// Count returns how many transactions the session user owns.
func (l *Ledger) Count(ctx context.Context, sess models.Session) (int, error) {
	if err := checkSession(sess); err != nil {
		return 0, err
	}
	return l.store.CountTransactions(ctx, sess.UserID)
}

func (l *Ledger) optionalDate(field, value string) *models.Date {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		l.log.WithField(field, value).Warn("Ledger.List.IgnoredFilter")
		return nil
	}
	return &d
}

// build checks everything but the kind and returns the resulting transaction.
func build(kind models.Kind, entry Entry) (*models.Transaction, error) {
	if !category.Valid(kind, entry.Category) {
		return nil, apperr.Invalid("category", "%q is not a %s category (allowed: %s)",
			entry.Category, kind, strings.Join(category.For(kind), ", "))
	}
	if !entry.Amount.IsPositive() {
		return nil, apperr.Invalid("amount", "%s must be greater than zero", entry.Amount)
	}
	if err := models.CheckAmount(entry.Amount); err != nil {
		return nil, apperr.Invalid("amount", "%v", err)
	}
	date, err := models.ParseDate(entry.Date)
	if err != nil {
		return nil, apperr.Invalid("date", "%q is not a valid YYYY-MM-DD date", entry.Date)
	}

	return &models.Transaction{
		Kind:        kind,
		Category:    entry.Category,
		Amount:      entry.Amount,
		Date:        date,
		Description: strings.TrimSpace(entry.Description),
	}, nil
}

func checkSession(sess models.Session) error {
	if sess.UserID <= 0 {
		return apperr.Invalid("session", "no authenticated user")
	}
	return nil
}
