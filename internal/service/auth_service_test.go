package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/service"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret-key", Issuer: "tradeflow"}
}

func signToken(t *testing.T, secret string, claims service.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestAuthService_ValidateToken_Success(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())
	userID := uuid.New()

	tokenString := signToken(t, "test-secret-key", service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradeflow",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
		Email:  "user@example.test",
		Role:   domain.RoleSupplier,
	})

	claims, err := svc.ValidateToken(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.test", claims.Email)
	assert.Equal(t, domain.RoleSupplier, claims.Role)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())

	tokenString := signToken(t, "some-other-secret", service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradeflow",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: uuid.New(),
	})

	_, err := svc.ValidateToken(tokenString)

	assert.Error(t, err)
}

func TestAuthService_ValidateToken_WrongIssuer(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())

	tokenString := signToken(t, "test-secret-key", service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: uuid.New(),
	})

	_, err := svc.ValidateToken(tokenString)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())

	tokenString := signToken(t, "test-secret-key", service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradeflow",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: uuid.New(),
	})

	_, err := svc.ValidateToken(tokenString)

	assert.Error(t, err)
}

func TestAuthService_ValidateToken_SubjectFallback(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())
	userID := uuid.New()

	// Older tokens carry the user ID only in the subject claim.
	tokenString := signToken(t, "test-secret-key", service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradeflow",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "legacy@example.test",
	})

	claims, err := svc.ValidateToken(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc := service.NewAuthService(testJWTConfig())

	_, err := svc.ValidateToken("not-a-token")

	assert.Error(t, err)
}
