// AngelaMos | 2026
// auth.go

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

// ActorResolver identifies who is making a request. A nil actor with a
// nil error means the request carries no identity.
type ActorResolver interface {
	ResolveActor(r *http.Request) (*policy.Actor, error)
}

func Authenticator(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.ResolveActor(r)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if !actor.Authenticated() {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func OptionalAuth(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.ResolveActor(r)
			if err == nil && actor.Authenticated() {
				r = r.WithContext(WithActor(r.Context(), actor))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.UnauthorizedError(""))
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}
