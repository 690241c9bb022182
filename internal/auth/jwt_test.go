// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/projectboard/internal/config"
	"github.com/carterperez-dev/projectboard/internal/core"
)

func testJWTConfig(t *testing.T) config.JWTConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: 5 * time.Minute,
		Issuer:            "projectboard",
		Audience:          "projectboard-api",
	}
	require.NoError(t, GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))
	return cfg
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	cfg := testJWTConfig(t)

	signer, err := NewJWTManager(cfg)
	require.NoError(t, err)
	verifier, err := NewVerifier(cfg)
	require.NoError(t, err)

	assert.True(t, signer.CanSign())
	assert.False(t, verifier.CanSign())
	assert.Equal(t, signer.GetKeyID(), verifier.GetKeyID())

	token, err := signer.CreateAccessToken(AccessTokenClaims{
		UserID: "5b0c6f2e-8d1a-4f7e-9a51-1f3f4f6e2a10",
		Name:   "Dana Manager",
		Role:   "MANAGER",
	})
	require.NoError(t, err)

	claims, err := verifier.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "5b0c6f2e-8d1a-4f7e-9a51-1f3f4f6e2a10", claims.UserID)
	assert.Equal(t, "Dana Manager", claims.Name)
	assert.Equal(t, "MANAGER", claims.Role)
}

func TestVerifierCannotSign(t *testing.T) {
	verifier, err := NewVerifier(testJWTConfig(t))
	require.NoError(t, err)

	_, err = verifier.CreateAccessToken(AccessTokenClaims{UserID: "x", Role: "USER"})
	assert.ErrorIs(t, err, ErrSigningUnavailable)
}

func TestVerifyRejectsForeignKeyAndAudience(t *testing.T) {
	cfg := testJWTConfig(t)
	signer, err := NewJWTManager(cfg)
	require.NoError(t, err)

	token, err := signer.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "USER"})
	require.NoError(t, err)

	other, err := NewVerifier(testJWTConfig(t))
	require.NoError(t, err)
	_, err = other.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	wrongAud := cfg
	wrongAud.Audience = "someone-else"
	v, err := NewVerifier(wrongAud)
	require.NoError(t, err)
	_, err = v.VerifyAccessToken(context.Background(), token)
	assert.Error(t, err)

	_, err = v.VerifyAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testJWTConfig(t)
	cfg.AccessTokenExpire = -time.Minute

	signer, err := NewJWTManager(cfg)
	require.NoError(t, err)

	token, err := signer.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "USER"})
	require.NoError(t, err)

	_, err = signer.VerifyAccessToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, core.ErrTokenExpired) || errors.Is(err, core.ErrTokenInvalid),
	)
}

func TestJWKSHandlerPublishesSingleKey(t *testing.T) {
	verifier, err := NewVerifier(testJWTConfig(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	verifier.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, verifier.GetKeyID(), set.Keys[0]["kid"])
	assert.NotContains(t, set.Keys[0], "d")
}
