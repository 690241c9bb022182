// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/projectboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (Stats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// projectRow carries the aggregated assignee list alongside the project.
type projectRow struct {
	Project
	Assignees string `db:"assignee_ids"`
}

func (r projectRow) toProject() Project {
	p := r.Project
	p.AssigneeIDs = []string{}
	if r.Assignees != "" {
		p.AssigneeIDs = strings.Split(r.Assignees, ",")
	}
	return p
}

const selectProjects = `
		SELECT p.id, p.name, p.description, p.start_date, p.end_date,
		       p.manager_id, COALESCE(u.first_name || ' ' || u.last_name, '') AS manager_name,
		       p.status, p.hours_consumed, p.created_at, p.updated_at,
		       COALESCE((
		           SELECT string_agg(DISTINCT t.assignee_id::text, ',')
		           FROM tasks t WHERE t.project_id = p.id
		       ), '') AS assignee_ids
		FROM projects p
		LEFT JOIN users u ON u.id = p.manager_id`

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (id, name, description, start_date, end_date, manager_id, status, hours_consumed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.StartDate,
		p.EndDate,
		p.ManagerID,
		p.Status,
		p.HoursConsumed,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create project: %w", core.ValidationError("manager not found"))
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	var row projectRow
	err := r.db.GetContext(ctx, &row, selectProjects+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	p := row.toProject()
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Project, error) {
	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, selectProjects+` ORDER BY p.created_at ASC, p.id ASC`); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toProject())
	}

	return projects, nil
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, start_date = $4, end_date = $5,
		    status = $6, hours_consumed = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.Description,
		p.StartDate,
		p.EndDate,
		p.Status,
		p.HoursConsumed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

// Delete removes the project; its tasks go with it through the foreign
// key cascade.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete project: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Stats(ctx context.Context, id string) (Stats, error) {
	query := `
		SELECT COUNT(*) AS total_tasks,
		       COUNT(*) FILTER (WHERE status = 'completed') AS completed_tasks
		FROM tasks
		WHERE project_id = $1`

	var s Stats
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return Stats{}, fmt.Errorf("project stats: %w", err)
	}

	return s, nil
}
