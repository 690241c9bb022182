// AngelaMos | 2026
// handler.go

package project

import (
	"encoding/json"
	"errors"
	"net/http"

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

// RegisterRoutes mounts /projects. Nested routes are mounted under
// /projects/{projectID}.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	nested ...func(chi.Router),
) {
	require := h.denier.RequireAction

	r.Route("/projects", func(r chi.Router) {
		r.Use(authenticator)

		r.With(require(policy.ActionListProjects)).Get("/", h.List)
		r.With(require(policy.ActionCreateProject)).Post("/", h.Create)

		r.Route("/{projectID}", func(r chi.Router) {
			r.With(require(policy.ActionViewProject)).Get("/", h.Get)
			r.With(require(policy.ActionUpdateProject)).Patch("/", h.Update)
			r.With(require(policy.ActionDeleteProject)).Delete("/", h.Delete)

			for _, mount := range nested {
				mount(r)
			}
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToProjectResponseList(projects))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")

	p, stats, err := h.service.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToProjectDetailResponse(p, stats))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, ToProjectResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToProjectResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")

	if err := h.service.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case policy.IsDenied(err):
		h.denier.Deny(w, r, err)
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, ErrInvalidDateRange):
		core.BadRequest(w, "start_date must be before end_date")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "project")
	default:
		core.InternalServerError(w, err)
	}
}
