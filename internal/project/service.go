// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
	"github.com/carterperez-dev/projectboard/internal/user"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo   Repository
	users  UserLookup
	policy policy.Policy
}

func NewService(repo Repository, users UserLookup, p policy.Policy) *Service {
	return &Service{repo: repo, users: users, policy: p}
}

// List returns the projects actor may see, oldest first.
func (s *Service) List(ctx context.Context, actor *policy.Actor) ([]Project, error) {
	if err := policy.Authorize(actor, policy.ActionListProjects, policy.Resource{Kind: "project"}); err != nil {
		return nil, err
	}

	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return policy.VisibleProjects(s.policy, actor, projects), nil
}

// Visible loads one project for actor. Projects hidden by the visibility
// filter are reported as not found.
func (s *Service) Visible(ctx context.Context, actor *policy.Actor, id string) (*Project, error) {
	res := policy.Resource{Kind: "project", ID: id}
	if err := policy.Authorize(actor, policy.ActionViewProject, res); err != nil {
		return nil, err
	}

	if !core.IsUUID(id) {
		return nil, fmt.Errorf("get project %q: %w", id, core.ErrNotFound)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanSee(actor, *p) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, actor *policy.Actor, id string) (*Project, Stats, error) {
	p, err := s.Visible(ctx, actor, id)
	if err != nil {
		return nil, Stats{}, err
	}

	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, Stats{}, err
	}

	return p, stats.Finish(p.HoursConsumed), nil
}

// Create checks the action first and the chosen manager second, so a
// caller without the role learns nothing about the manager.
func (s *Service) Create(
	ctx context.Context,
	actor *policy.Actor,
	req CreateProjectRequest,
) (_ *Project, err error) {
	ctx, span := core.StartSpan(ctx, "project.Create")
	defer func() {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		span.End()
	}()

	res := policy.Resource{Kind: "project"}
	if err := policy.Authorize(actor, policy.ActionCreateProject, res); err != nil {
		return nil, err
	}

	start, end, err := ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	manager, err := s.users.GetByID(ctx, req.ManagerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError("manager not found")
		}
		return nil, err
	}

	res.AssigneeRole = manager.Role
	if err := policy.Authorize(actor, policy.ActionCreateProject, res); err != nil {
		return nil, err
	}

	p := &Project{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		StartDate:     start,
		EndDate:       end,
		ManagerID:     manager.ID,
		ManagerName:   manager.FullName(),
		Status:        StatusPlanning,
		HoursConsumed: 0,
		AssigneeIDs:   []string{},
	}

	span.SetAttributes(attribute.String("project.id", p.ID))
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor *policy.Actor,
	id string,
	req UpdateProjectRequest,
) (_ *Project, err error) {
	ctx, span := core.StartSpan(ctx, "project.Update", attribute.String("project.id", id))
	defer func() {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		span.End()
	}()

	res := policy.Resource{Kind: "project", ID: id}
	if err := policy.Authorize(actor, policy.ActionUpdateProject, res); err != nil {
		return nil, err
	}

	if !core.IsUUID(id) {
		return nil, fmt.Errorf("update project %q: %w", id, core.ErrNotFound)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("update project: status %q: %w", *req.Status, core.ErrInvalidInput)
		}
		p.Status = status
	}
	if req.HoursConsumed != nil {
		if *req.HoursConsumed < 0 {
			return nil, fmt.Errorf("update project: negative hours: %w", core.ErrInvalidInput)
		}
		p.HoursConsumed = *req.HoursConsumed
	}

	if req.StartDate != nil || req.EndDate != nil {
		start, end := p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout)
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		p.StartDate, p.EndDate, err = ParseDateRange(start, end)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor *policy.Actor, id string) (err error) {
	ctx, span := core.StartSpan(ctx, "project.Delete", attribute.String("project.id", id))
	defer func() {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		span.End()
	}()

	res := policy.Resource{Kind: "project", ID: id}
	if err := policy.Authorize(actor, policy.ActionDeleteProject, res); err != nil {
		return err
	}

	if !core.IsUUID(id) {
		return fmt.Errorf("delete project %q: %w", id, core.ErrNotFound)
	}

	return s.repo.Delete(ctx, id)
}
