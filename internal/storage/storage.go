package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/xplainit/xplainit-be/internal/models"
)

// Typed failures the service layer matches on with errors.Is. Anything
// else coming out of a Store is an unexpected persistence fault.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// Store abstracts user and explanation persistence. Both backends enforce
// username/email uniqueness with engine-level constraints, so concurrent
// check-then-insert races surface as ErrDuplicateUsername/ErrDuplicateEmail
// rather than duplicate rows.
type Store interface {
	// CreateUser inserts a new user row. The caller supplies ID, hash and
	// CreatedAt; TotalExplanations starts at whatever the struct carries
	// (zero for fresh signups).
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// DeleteUser removes the user and all owned explanations in one
	// transaction, returning how many explanations were cascaded away.
	DeleteUser(ctx context.Context, id string) (int64, error)

	// CreateExplanation inserts the record and increments the owner's
	// total_explanations as a single transaction. Either both halves
	// commit or neither does.
	CreateExplanation(ctx context.Context, exp *models.Explanation) error
	// ListExplanationsByUser returns the owner's explanations newest
	// first, truncated to limit.
	ListExplanationsByUser(ctx context.Context, userID string, limit int) ([]models.Explanation, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open selects a backend by driver name.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite3":
		return NewSQLiteStore(dsn)
	case "postgres":
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
