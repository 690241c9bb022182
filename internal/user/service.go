// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if !core.IsUUID(id) {
		return nil, fmt.Errorf("get user %q: %w", id, core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// Create registers a new account on behalf of actor. The password is
// stored as an argon2id hash.
func (s *Service) Create(
	ctx context.Context,
	actor *policy.Actor,
	req CreateUserRequest,
) (*User, error) {
	if err := policy.Authorize(actor, policy.ActionCreateUser, policy.Resource{Kind: "user"}); err != nil {
		return nil, err
	}

	role, err := policy.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w: %w", core.ErrInvalidInput, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.DuplicateError("email")
	}

	exists, err = s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.DuplicateError("username")
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("user")
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) List(
	ctx context.Context,
	actor *policy.Actor,
	params ListUsersParams,
) ([]User, int, error) {
	if err := policy.Authorize(actor, policy.ActionListUsers, policy.Resource{Kind: "user"}); err != nil {
		return nil, 0, err
	}

	return s.repo.List(ctx, params)
}

// Managers returns the users a new project can be handed to.
func (s *Service) Managers(
	ctx context.Context,
	actor *policy.Actor,
) ([]User, error) {
	if err := policy.Authorize(actor, policy.ActionCreateProject, policy.Resource{Kind: "user"}); err != nil {
		return nil, err
	}

	users, err := s.repo.ListByRoles(ctx, policy.RoleManager)
	if err != nil {
		return nil, err
	}

	return policy.EligibleManagers(users), nil
}

// Assignable returns the users actor may assign a task to.
func (s *Service) Assignable(
	ctx context.Context,
	actor *policy.Actor,
) ([]User, error) {
	if err := policy.Authorize(actor, policy.ActionCreateTask, policy.Resource{Kind: "user"}); err != nil {
		return nil, err
	}

	users, err := s.repo.ListByRoles(ctx, policy.AssignableRoles(actor.Role)...)
	if err != nil {
		return nil, err
	}

	return policy.EligibleAssignees(actor, users), nil
}
