// AngelaMos | 2026
// handler.go

package task

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
	"github.com/carterperez-dev/projectboard/internal/project"
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

// Routes mounts /tasks on a router already scoped to /projects/{projectID}.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.With(h.denier.RequireAction(policy.ActionViewProject)).Get("/", h.List)
		r.With(h.denier.RequireAction(policy.ActionCreateTask)).Post("/", h.Create)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	tasks, err := h.service.List(r.Context(), middleware.ActorFromContext(r.Context()), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToTaskResponseList(tasks))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), projectID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, ToTaskResponse(t))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case policy.IsDenied(err):
		h.denier.Deny(w, r, err)
	case core.IsAppError(err):
		core.JSONError(w, err)
	case project.IsInvalidDateRange(err):
		core.BadRequest(w, "start_date must be before end_date")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "project")
	default:
		core.InternalServerError(w, err)
	}
}
