// Package auth registers users and turns credentials into sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/models"
	"bookkeeper/internal/storage"
)

var (
	// ErrUserExists is returned when registering a username that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserStore is the user persistence. *storage.DB implements it.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator registers users and checks their credentials.
type Authenticator struct {
	store UserStore
	log   logrus.FieldLogger
}

// NewAuthenticator creates an Authenticator. A nil logger falls back to the logrus standard logger.
func NewAuthenticator(store UserStore, log logrus.FieldLogger) *Authenticator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Authenticator{store: store, log: log.WithField("component", "auth")}
}

// Register creates a user. Usernames are unique.
func (a *Authenticator) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Invalid("username", "cannot be empty")
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperr.Invalid("password", "cannot be empty")
	}

	existing, err := a.store.GetUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Invalid("password", "%v", err)
	}

	user, err := a.store.CreateUser(ctx, username, hash)
	if err != nil {
		return nil, err
	}

	a.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("Auth.Register.Complete")
	return user, nil
}

// Authenticate checks the credentials and returns the session to run ledger operations with.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	user, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		a.log.WithField("username", username).Warn("Auth.Authenticate.UnknownUser")
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		a.log.WithField("username", username).Warn("Auth.Authenticate.BadPassword")
		return models.Session{}, ErrInvalidCredentials
	}

	return models.SessionFor(user), nil
}
