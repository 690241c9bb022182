// AngelaMos | 2026
// deny.go

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

const (
	CodeInsufficientRole = "INSUFFICIENT_ROLE"
	CodeInvalidAssignee  = "INVALID_ASSIGNEE"
)

// Denier turns policy rejections into responses. Browsers are sent back
// to the dashboard with a 303; API clients get a JSON error that names
// the same location in redirect_to.
type Denier struct {
	dashboardPath string
	logger        *slog.Logger
}

func NewDenier(dashboardPath string, logger *slog.Logger) *Denier {
	if dashboardPath == "" {
		dashboardPath = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Denier{dashboardPath: dashboardPath, logger: logger}
}

func (d *Denier) DashboardPath() string {
	return d.dashboardPath
}

// RequireAction rejects the request before the handler runs unless the
// actor in context may perform action. Resource-specific checks stay in
// the services.
func (d *Denier) RequireAction(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Authenticated() {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			if err := policy.Authorize(actor, action, policy.Resource{}); err != nil {
				d.Deny(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFeature gates a UI feature by minimum role rank rather than by
// action membership.
func (d *Denier) RequireFeature(name string, required policy.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Authenticated() {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			if !policy.CanAccessFeature(actor, required) {
				d.Deny(w, r, &policy.DeniedError{
					Action:   policy.Action(name),
					Resource: policy.Resource{Kind: "feature"},
					Role:     actor.Role,
					Reason:   policy.ErrInsufficientRole,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Deny writes the rejection for err, which is expected to carry a
// *policy.DeniedError.
func (d *Denier) Deny(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	var denied *policy.DeniedError
	action := ""
	if errors.As(err, &denied) {
		action = string(denied.Action)
	}

	d.logger.WarnContext(ctx, "policy denied",
		"user_id", GetUserID(ctx),
		"role", GetUserRole(ctx),
		"action", action,
		"reason", err.Error(),
		"request_id", GetRequestID(ctx),
	)
	core.AddSpanEvent(ctx, "policy.denied",
		attribute.String("action", action),
		attribute.String("role", string(GetUserRole(ctx))),
	)

	if !actor.Authenticated() {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}

	if WantsHTML(r) {
		http.Redirect(w, r, d.dashboardPath, http.StatusSeeOther)
		return
	}

	core.JSONError(w, DeniedAppError(err).WithDetail("redirect_to", d.dashboardPath))
}

// DeniedAppError maps a policy rejection to its HTTP form.
func DeniedAppError(err error) *core.AppError {
	if errors.Is(err, policy.ErrInvalidAssignee) {
		return core.NewAppError(
			err,
			"assignee role is not allowed for this action",
			http.StatusUnprocessableEntity,
			CodeInvalidAssignee,
		)
	}
	return core.NewAppError(
		err,
		"insufficient role for this action",
		http.StatusForbidden,
		CodeInsufficientRole,
	)
}

// WantsHTML reports whether the client is a browser navigation rather
// than an API call.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
