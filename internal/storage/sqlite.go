package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/xplainit/xplainit-be/internal/models"
)

// SQLiteStore implements Store on top of a local SQLite file. This is the
// default backend for development and small deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database file, applies the schema and returns
// the store.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate runs the SQL statements to set up the database schema. The
// UNIQUE constraints on username and email are load-bearing: they close
// the concurrent-signup race at the engine level.
func (s *SQLiteStore) migrate() error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		total_explanations INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS explanations (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		topic TEXT NOT NULL,
		explanation TEXT NOT NULL,
		level TEXT NOT NULL,
		tone TEXT NOT NULL,
		language TEXT NOT NULL,
		extras TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_explanations_user_created
		ON explanations (user_id, created_at DESC);
	`
	_, err := s.db.Exec(sqlStmt)
	return err
}

// CreateUser inserts a new user row, translating unique-constraint
// violations into the typed duplicate errors.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, total_explanations, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName,
		user.TotalExplanations, user.IsActive, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(sqliteErr.Error(), "users.username") {
				return ErrDuplicateUsername
			}
			if strings.Contains(sqliteErr.Error(), "users.email") {
				return ErrDuplicateEmail
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, full_name, total_explanations, is_active, created_at
		 FROM users WHERE `+column+` = ?`, value)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.TotalExplanations, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}
	return user, nil
}

// DeleteUser removes a user and all owned explanations in one transaction.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM explanations WHERE user_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete explanations: %w", err)
	}
	cascaded, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete user: %w", err)
	}
	return cascaded, nil
}

// CreateExplanation inserts the record and bumps the owner's counter as a
// single transaction so the counter never drifts from the true count.
func (s *SQLiteStore) CreateExplanation(ctx context.Context, exp *models.Explanation) error {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert explanation: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO explanations (id, user_id, topic, explanation, level, tone, language, extras, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.UserID, exp.Topic, exp.Text,
		exp.Settings.Level, exp.Settings.Tone, exp.Settings.Language, exp.Settings.Extras,
		exp.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrNotFound
		}
		return fmt.Errorf("insert explanation: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET total_explanations = total_explanations + 1 WHERE id = ?", exp.UserID)
	if err != nil {
		return fmt.Errorf("increment explanation count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert explanation: %w", err)
	}
	return nil
}

// ListExplanationsByUser returns the owner's explanations newest first.
// The id tiebreaker keeps the order total when timestamps collide.
func (s *SQLiteStore) ListExplanationsByUser(ctx context.Context, userID string, limit int) ([]models.Explanation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, topic, explanation, level, tone, language, extras, created_at
		 FROM explanations WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select explanations: %w", err)
	}
	defer rows.Close()

	var exps []models.Explanation
	for rows.Next() {
		var exp models.Explanation
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Topic, &exp.Text,
			&exp.Settings.Level, &exp.Settings.Tone, &exp.Settings.Language, &exp.Settings.Extras,
			&exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan explanation: %w", err)
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
