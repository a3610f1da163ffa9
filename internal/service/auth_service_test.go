package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

const testSecret = "test-session-secret"

func mintToken(t *testing.T, role models.UserRole, issuer, secret string) string {
	t.Helper()
	claims := models.SessionClaims{
		UserID: "u1",
		Role:   role,
		Email:  "u1@example.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenAcceptsKnownRole(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret, Issuer: "idp"})

	claims, err := svc.ValidateToken(mintToken(t, models.RoleRegistrar, "idp", testSecret))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleRegistrar, claims.Role)
}

func TestValidateTokenRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret})

	_, err := svc.ValidateToken(mintToken(t, "JANITOR", "", testSecret))
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret})

	_, err := svc.ValidateToken(mintToken(t, models.RoleStudent, "", "other-secret"))
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret, Issuer: "idp"})

	_, err := svc.ValidateToken(mintToken(t, models.RoleStudent, "someone-else", testSecret))
	assert.Error(t, err)
}

func mintTokenWithAudience(t *testing.T, audience ...string) string {
	t.Helper()
	claims := models.SessionClaims{
		UserID: "u1",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  audience,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenAcceptsConfiguredAudience(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret, Audience: []string{"portal"}})

	claims, err := svc.ValidateToken(mintTokenWithAudience(t, "portal", "library"))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestValidateTokenRejectsWrongAudience(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret, Audience: []string{"portal"}})

	_, err := svc.ValidateToken(mintTokenWithAudience(t, "library"))
	assert.Error(t, err)

	_, err = svc.ValidateToken(mintTokenWithAudience(t))
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{SessionSecret: testSecret})

	claims := models.SessionClaims{
		UserID: "u1",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
