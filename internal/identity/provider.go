// AngelaMos | 2026
// provider.go

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/carterperez-dev/projectboard/internal/auth"
	"github.com/carterperez-dev/projectboard/internal/config"
	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*auth.AccessTokenClaims, error)
}

// JWTProvider reads the actor from a bearer token.
type JWTProvider struct {
	verifier TokenVerifier
}

func NewJWTProvider(verifier TokenVerifier) *JWTProvider {
	return &JWTProvider{verifier: verifier}
}

func (p *JWTProvider) ResolveActor(r *http.Request) (*policy.Actor, error) {
	token := middleware.ExtractToken(r)
	if token == "" {
		return nil, nil
	}

	claims, err := p.verifier.VerifyAccessToken(r.Context(), token)
	if err != nil {
		return nil, err
	}

	role, err := policy.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w: %w", core.ErrTokenInvalid, err)
	}

	return &policy.Actor{
		ID:   claims.UserID,
		Name: claims.Name,
		Role: role,
	}, nil
}

// StaticProvider signs every request in as one fixed actor. It backs
// auth.mode=static for local development.
type StaticProvider struct {
	actor policy.Actor
}

func NewStaticProvider(actor policy.Actor) *StaticProvider {
	return &StaticProvider{actor: actor}
}

func (p *StaticProvider) ResolveActor(*http.Request) (*policy.Actor, error) {
	actor := p.actor
	return &actor, nil
}

// New picks the provider for cfg.Auth.Mode. verifier is only used in jwt
// mode and may be nil otherwise.
func New(
	cfg config.AuthConfig,
	verifier TokenVerifier,
	logger *slog.Logger,
) (middleware.ActorResolver, error) {
	switch cfg.Mode {
	case config.AuthModeJWT:
		if verifier == nil {
			return nil, fmt.Errorf("jwt identity provider needs a verifier")
		}
		return NewJWTProvider(verifier), nil

	case config.AuthModeStatic:
		role, err := policy.ParseRole(cfg.StaticActor.Role)
		if err != nil {
			return nil, fmt.Errorf("static actor: %w", err)
		}
		logger.Warn("static identity provider enabled, every request is signed in",
			"user_id", cfg.StaticActor.ID,
			"role", role,
		)
		return NewStaticProvider(policy.Actor{
			ID:   cfg.StaticActor.ID,
			Name: cfg.StaticActor.Name,
			Role: role,
		}), nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
