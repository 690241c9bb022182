// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/carterperez-dev/projectboard/internal/policy"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ActorKey     contextKey = "actor"
)

func WithActor(ctx context.Context, actor *policy.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromContext returns the signed-in actor, or nil when the request
// was not identified.
func ActorFromContext(ctx context.Context) *policy.Actor {
	if actor, ok := ctx.Value(ActorKey).(*policy.Actor); ok {
		return actor
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if actor := ActorFromContext(ctx); actor != nil {
		return actor.ID
	}
	return ""
}

func GetUserRole(ctx context.Context) policy.Role {
	if actor := ActorFromContext(ctx); actor != nil {
		return actor.Role
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return ActorFromContext(ctx).Authenticated()
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
