package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackportal/internal/platform/postgres"
	"hackportal/internal/project/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
)

// PostgresStore persists projects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectColumns = `id, title, description, min_team_size, max_team_size, environment,
	additional_requests, creator_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p         models.Project
		env       string
		creatorID uuid.NullUUID
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.MinTeamSize, &p.MaxTeamSize, &env,
		&p.AdditionalRequests, &creatorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Environment = models.Environment(env)
	if creatorID.Valid {
		creator := id.UserID(creatorID.UUID)
		p.CreatorID = &creator
	}
	return &p, nil
}

func nullableCreator(p *models.Project) uuid.NullUUID {
	if p.CreatorID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*p.CreatorID), Valid: true}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Project) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Title, p.Description, p.MinTeamSize, p.MaxTeamSize, string(p.Environment),
		p.AdditionalRequests, nullableCreator(p), p.CreatedAt, p.UpdatedAt)
	return postgres.MapWriteError(err, "insert project")
}

func (s *PostgresStore) FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	p, err := scanProject(tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Project) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE projects SET
			title = $2, description = $3, min_team_size = $4, max_team_size = $5,
			environment = $6, additional_requests = $7, updated_at = $8
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.MinTeamSize, p.MaxTeamSize, string(p.Environment),
		p.AdditionalRequests, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res)
}

// Delete removes the project; registrations cascade.
func (s *PostgresStore) Delete(ctx context.Context, projectID id.ProjectID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
