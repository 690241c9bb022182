// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
	"github.com/carterperez-dev/projectboard/internal/project"
)

// ProjectFinder resolves a project the actor is allowed to see.
type ProjectFinder interface {
	Visible(ctx context.Context, actor *policy.Actor, id string) (*project.Project, error)
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	users    project.UserLookup
}

func NewService(repo Repository, projects ProjectFinder, users project.UserLookup) *Service {
	return &Service{repo: repo, projects: projects, users: users}
}

func (s *Service) List(ctx context.Context, actor *policy.Actor, projectID string) ([]Task, error) {
	p, err := s.projects.Visible(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByProject(ctx, p.ID)
}

// Create appends a task to the project. The assignee must be in the
// actor's assignable set, and the actor must be a stored user since the
// task records who created it.
func (s *Service) Create(
	ctx context.Context,
	actor *policy.Actor,
	projectID string,
	req CreateTaskRequest,
) (_ *Task, err error) {
	ctx, span := core.StartSpan(ctx, "task.Create", attribute.String("project.id", projectID))
	defer func() {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		span.End()
	}()

	res := policy.Resource{Kind: "task"}
	if err := policy.Authorize(actor, policy.ActionCreateTask, res); err != nil {
		return nil, err
	}

	if !core.IsUUID(actor.ID) {
		return nil, core.UnknownActorError()
	}

	p, err := s.projects.Visible(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	start, end, err := project.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, req.AssigneeID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError("assignee not found")
		}
		return nil, err
	}

	res.AssigneeRole = assignee.Role
	if err := policy.Authorize(actor, policy.ActionCreateTask, res); err != nil {
		return nil, err
	}

	t := &Task{
		ID:            uuid.New().String(),
		ProjectID:     p.ID,
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		StartDate:     start,
		EndDate:       end,
		AssigneeID:    assignee.ID,
		AssigneeName:  assignee.FullName(),
		CreatedBy:     actor.ID,
		Status:        project.StatusPlanning,
		HoursConsumed: 0,
	}

	span.SetAttributes(attribute.String("task.id", t.ID))
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}
