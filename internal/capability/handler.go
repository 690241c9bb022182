// AngelaMos | 2026
// handler.go

package capability

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

type MeResponse struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role policy.Role `json:"role"`
	Rank int         `json:"rank"`
}

// CapabilitiesResponse tells a client which controls to render. The
// server still checks every request on its own.
type CapabilitiesResponse struct {
	Role            policy.Role            `json:"role"`
	Actions         map[policy.Action]bool `json:"actions"`
	FeatureLevels   map[policy.Role]bool   `json:"feature_levels"`
	AssignableRoles []policy.Role          `json:"assignable_roles"`
	Visibility      policy.Visibility      `json:"visibility"`
	DashboardPath   string                 `json:"dashboard_path"`
}

type Handler struct {
	policy        policy.Policy
	dashboardPath string
}

func NewHandler(p policy.Policy, dashboardPath string) *Handler {
	if p.Visibility == "" {
		p.Visibility = policy.VisibilityUnfiltered
	}
	return &Handler{policy: p, dashboardPath: dashboardPath}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/me", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.Me)
		r.Get("/capabilities", h.Capabilities)
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, MeResponse{
		ID:   actor.ID,
		Name: actor.Name,
		Role: actor.Role,
		Rank: actor.Role.Rank(),
	})
}

func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, For(h.policy, actor, h.dashboardPath))
}

// For evaluates everything the policy decides for actor without a
// specific resource.
func For(p policy.Policy, actor *policy.Actor, dashboardPath string) CapabilitiesResponse {
	levels := make(map[policy.Role]bool, len(policy.Roles))
	for _, role := range policy.Roles {
		levels[role] = policy.CanAccessFeature(actor, role)
	}

	assignable := policy.AssignableRoles(actor.Role)
	if assignable == nil {
		assignable = []policy.Role{}
	}

	return CapabilitiesResponse{
		Role:            actor.Role,
		Actions:         policy.Capabilities(actor),
		FeatureLevels:   levels,
		AssignableRoles: assignable,
		Visibility:      p.Visibility,
		DashboardPath:   dashboardPath,
	}
}
