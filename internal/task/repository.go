// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/projectboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
}

type Store interface {
	core.DBTX
	core.TxBeginner
}

type repository struct {
	db Store
}

func NewRepository(db Store) Repository {
	return &repository{db: db}
}

// Create appends t to its project. The project row is locked for the
// duration so concurrent inserts get consecutive positions.
func (r *repository) Create(ctx context.Context, t *Task) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked string
		err := tx.GetContext(ctx, &locked,
			`SELECT id FROM projects WHERE id = $1 FOR UPDATE`, t.ProjectID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("create task: project: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("create task: lock project: %w", err)
		}

		if err := tx.GetContext(ctx, &t.Position,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE project_id = $1`,
			t.ProjectID,
		); err != nil {
			return fmt.Errorf("create task: next position: %w", err)
		}

		query := `
			INSERT INTO tasks (id, project_id, position, name, description, start_date, end_date,
			                   assignee_id, created_by, status, hours_consumed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at`

		err = tx.QueryRowxContext(ctx, query,
			t.ID,
			t.ProjectID,
			t.Position,
			t.Name,
			t.Description,
			t.StartDate,
			t.EndDate,
			t.AssigneeID,
			t.CreatedBy,
			t.Status,
			t.HoursConsumed,
		).Scan(&t.CreatedAt)
		if err != nil {
			return insertError(err)
		}

		return nil
	})
}

const (
	fkAssignee  = "tasks_assignee_id_fkey"
	fkCreatedBy = "tasks_created_by_fkey"
	fkProject   = "tasks_project_id_fkey"
)

// insertError translates a failed INSERT by the constraint it hit. The
// project row is locked by then, so a project violation only appears if
// it was deleted out from under the transaction.
func insertError(err error) error {
	constraint, ok := core.ForeignKeyConstraint(err)
	if !ok {
		return fmt.Errorf("create task: %w", err)
	}

	switch constraint {
	case fkCreatedBy:
		return fmt.Errorf("create task: %w", core.UnknownActorError())
	case fkAssignee:
		return fmt.Errorf("create task: %w", core.ValidationError("assignee not found"))
	case fkProject:
		return fmt.Errorf("create task: project: %w", core.ErrNotFound)
	default:
		return fmt.Errorf("create task: %s: %w", constraint, err)
	}
}

func (r *repository) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	query := `
		SELECT t.id, t.project_id, t.position, t.name, t.description, t.start_date, t.end_date,
		       t.assignee_id, COALESCE(u.first_name || ' ' || u.last_name, '') AS assignee_name,
		       t.created_by, t.status, t.hours_consumed, t.created_at
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.project_id = $1
		ORDER BY t.position ASC`

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, projectID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}
