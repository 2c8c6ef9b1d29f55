package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/xplainit/xplainit-be/internal/models"
)

// PostgresStore implements Store on top of PostgreSQL via the pgx
// database/sql driver. It is the production backend; semantics match
// SQLiteStore exactly.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the given DSN, applies the schema and
// returns the store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		total_explanations INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
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
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_explanations_user_created
		ON explanations (user_id, created_at DESC);
	`
	_, err := s.db.Exec(sqlStmt)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, total_explanations, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName,
		user.TotalExplanations, user.IsActive, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return ErrDuplicateUsername
			case "users_email_key":
				return ErrDuplicateEmail
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *PostgresStore) getUser(ctx context.Context, column, value string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, full_name, total_explanations, is_active, created_at
		 FROM users WHERE `+column+` = $1`, value)
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

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM explanations WHERE user_id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete explanations: %w", err)
	}
	cascaded, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
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

func (s *PostgresStore) CreateExplanation(ctx context.Context, exp *models.Explanation) error {
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		exp.ID, exp.UserID, exp.Topic, exp.Text,
		exp.Settings.Level, exp.Settings.Tone, exp.Settings.Language, exp.Settings.Extras,
		exp.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrNotFound
		}
		return fmt.Errorf("insert explanation: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET total_explanations = total_explanations + 1 WHERE id = $1", exp.UserID)
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

func (s *PostgresStore) ListExplanationsByUser(ctx context.Context, userID string, limit int) ([]models.Explanation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, topic, explanation, level, tone, language, extras, created_at
		 FROM explanations WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
