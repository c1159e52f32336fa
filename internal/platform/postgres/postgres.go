// Package postgres opens the PostgreSQL pool, applies the schema and maps
// driver errors onto store sentinels.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"hackportal/internal/platform/config"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	defaultTxTimeout = 5 * time.Second
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS projects (
		id                  UUID PRIMARY KEY,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL,
		min_team_size       INTEGER NOT NULL CHECK (min_team_size >= 1),
		max_team_size       INTEGER NOT NULL,
		environment         TEXT NOT NULL CHECK (environment IN ('internal', 'external')),
		additional_requests TEXT NOT NULL DEFAULT '',
		creator_id          UUID REFERENCES users (id) ON DELETE SET NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		CHECK (max_team_size >= min_team_size)
	)`,
	`CREATE INDEX IF NOT EXISTS projects_created_at_idx ON projects (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS project_registrations (
		project_id UUID NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
		user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS project_registrations_user_idx ON project_registrations (user_id)`,
	`CREATE TABLE IF NOT EXISTS token_revocations (
		jti        TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

// IsUniqueViolation reports whether err is a unique constraint rejection.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key rejection.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// MapWriteError translates constraint violations into sentinels and leaves
// everything else wrapped with op.
func MapWriteError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// RunInTx runs fn inside a transaction carried on the context (see pkg/platform/tx).
// A default timeout applies when ctx has no deadline.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, nested := tx.From(ctx); nested {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRunner adapts RunInTx to tx.Runner.
type TxRunner struct {
	db *sql.DB
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, r.db, fn)
}
