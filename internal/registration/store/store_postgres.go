package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hackportal/internal/platform/postgres"
	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
)

// PostgresStore persists registrations in project_registrations. The
// primary key (project_id, user_id) enforces one registration per pair and
// the foreign keys cascade on project or user deletion.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Registration, error) {
	reg := &models.Registration{ProjectID: projectID, UserID: userID}
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT created_at FROM project_registrations
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID).Scan(&reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

// Insert is a single round trip; the constraint decides duplicates.
func (s *PostgresStore) Insert(ctx context.Context, reg *models.Registration) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO project_registrations (project_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, reg.ProjectID, reg.UserID, reg.CreatedAt)
	return postgres.MapWriteError(err, "insert registration")
}

// InsertWithinCapacity locks the project row so concurrent registrations for
// the same project serialize, then counts before inserting.
func (s *PostgresStore) InsertWithinCapacity(ctx context.Context, reg *models.Registration, limit int) error {
	return postgres.RunInTx(ctx, s.db, func(txCtx context.Context) error {
		q := tx.QuerierFrom(txCtx, s.db)

		var locked id.ProjectID
		err := q.QueryRowContext(txCtx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, reg.ProjectID).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lock project: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock project: %w", err)
		}

		if _, err := s.Find(txCtx, reg.ProjectID, reg.UserID); err == nil {
			return fmt.Errorf("registration: %w", sentinel.ErrAlreadyUsed)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}

		count, err := s.Count(txCtx, reg.ProjectID)
		if err != nil {
			return err
		}
		if count >= limit {
			return fmt.Errorf("project full: %w", sentinel.ErrInvalidState)
		}
		return s.Insert(txCtx, reg)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, projectID id.ProjectID, userID id.UserID) (bool, error) {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		DELETE FROM project_registrations WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteByProject is normally a no-op because of ON DELETE CASCADE.
func (s *PostgresStore) DeleteByProject(ctx context.Context, projectID id.ProjectID) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM project_registrations WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project registrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, projectID id.ProjectID) (int, error) {
	var n int
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_registrations WHERE project_id = $1`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByProjects(ctx context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]int, error) {
	out := make(map[id.ProjectID]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(projectIDs))
	for i, projectID := range projectIDs {
		keys[i] = projectID.String()
		out[projectID] = 0
	}

	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT project_id, COUNT(*) FROM project_registrations
		WHERE project_id = ANY($1::uuid[])
		GROUP BY project_id
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("count registrations by project: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			projectID id.ProjectID
			n         int
		)
		if err := rows.Scan(&projectID, &n); err != nil {
			return nil, fmt.Errorf("scan registration count: %w", err)
		}
		out[projectID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration counts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Registration, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT user_id, created_at FROM project_registrations
		WHERE project_id = $1
		ORDER BY created_at, user_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		reg := &models.Registration{ProjectID: projectID}
		if err := rows.Scan(&reg.UserID, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ProjectsForUser(ctx context.Context, userID id.UserID) (map[id.ProjectID]bool, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT project_id FROM project_registrations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user registrations: %w", err)
	}
	defer rows.Close()

	out := make(map[id.ProjectID]bool)
	for rows.Next() {
		var projectID id.ProjectID
		if err := rows.Scan(&projectID); err != nil {
			return nil, fmt.Errorf("scan user registration: %w", err)
		}
		out[projectID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user registrations: %w", err)
	}
	return out, nil
}
