package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hackportal/internal/platform/postgres"
	"hackportal/internal/user/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, name, is_admin, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, user *models.User) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.Name, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	return postgres.MapWriteError(err, "insert user")
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	q := tx.QuerierFrom(ctx, s.db)
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	q := tx.QuerierFrom(ctx, s.db)
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// UpdateAdmin locks every admin row and the target row, counts, asks guard,
// then writes, all in one transaction. Concurrent demotions serialize on the
// admin row locks so the later one sees the reduced count.
func (s *PostgresStore) UpdateAdmin(ctx context.Context, userID id.UserID, isAdmin bool, guard models.AdminGuard) (*models.User, error) {
	var updated *models.User
	err := postgres.RunInTx(ctx, s.db, func(txCtx context.Context) error {
		q := tx.QuerierFrom(txCtx, s.db)

		rows, err := q.QueryContext(txCtx, `SELECT id FROM users WHERE is_admin ORDER BY id FOR UPDATE`)
		if err != nil {
			return fmt.Errorf("lock admins: %w", err)
		}
		adminCount := 0
		for rows.Next() {
			adminCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("lock admins: %w", err)
		}
		rows.Close()

		target, err := scanUser(q.QueryRowContext(txCtx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}

		if guard != nil {
			if err := guard(target, adminCount); err != nil {
				return err
			}
		}
		if target.IsAdmin == isAdmin {
			updated = target
			return nil
		}

		updated, err = scanUser(q.QueryRowContext(txCtx, `
			UPDATE users SET is_admin = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+userColumns, userID, isAdmin, nowFunc()))
		if err != nil {
			return fmt.Errorf("update admin flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
