// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	denier    *middleware.Denier
}

func NewHandler(service *Service, denier *middleware.Denier) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
		denier:    denier,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(h.denier.RequireAction(policy.ActionListUsers)).Get("/", h.List)
		r.With(h.denier.RequireAction(policy.ActionCreateUser)).Post("/", h.Create)
		r.With(h.denier.RequireAction(policy.ActionCreateProject)).Get("/managers", h.Managers)
		r.With(h.denier.RequireAction(policy.ActionCreateTask)).Get("/assignable", h.Assignable)
	})
}

// List returns a paginated user list, optionally filtered by ?role=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := policy.ParseRole(raw)
		if err != nil {
			core.BadRequest(w, "role must be one of: ADMIN MANAGER USER")
			return
		}
		params.Role = role
	}
	params.Normalize()

	users, total, err := h.service.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, ToUserResponse(user))
}

// Managers feeds the manager selector on the new-project form.
func (h *Handler) Managers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Managers(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

// Assignable feeds the assignee selector on the new-task form.
func (h *Handler) Assignable(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Assignable(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case policy.IsDenied(err):
		h.denier.Deny(w, r, err)
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
