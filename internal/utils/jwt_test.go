package utils

import (
	"testing"
	"time"

	"user_manager/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func newTestJWTUtil(secret string) *JWTUtil {
	return NewJWTUtil(secret, "test-aud", "test-iss")
}

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	tokenString, err := jwtUtil.GenerateToken("user-1", "a@b.com", "user")

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// Validate the token to ensure it's well-formed and contains correct claims
	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_GenerateToken_UniqueIDs(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	t1, _ := jwtUtil.GenerateToken("user-1", "a@b.com", "user")
	t2, _ := jwtUtil.GenerateToken("user-1", "a@b.com", "user")

	c1, err := jwtUtil.ValidateToken(t1)
	assert.NoError(t, err)
	c2, err := jwtUtil.ValidateToken(t2)
	assert.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	tokenString := signedToken(t, "secret", jwt.SigningMethodHS256, &JWTClaims{
		UserID: "user-1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Audience:  jwt.ClaimStrings{"test-aud"},
			Issuer:    "test-iss",
		},
	})

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := newTestJWTUtil("secret1")
	jwtUtil2 := newTestJWTUtil("secret2")

	tokenString, _ := jwtUtil1.GenerateToken("user-1", "a@b.com", "user")

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_WrongAudience(t *testing.T) {
	issued := NewJWTUtil("secret", "other-aud", "test-iss")
	jwtUtil := newTestJWTUtil("secret")

	tokenString, _ := issued.GenerateToken("user-1", "a@b.com", "user")

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_WrongIssuer(t *testing.T) {
	issued := NewJWTUtil("secret", "test-aud", "other-iss")
	jwtUtil := newTestJWTUtil("secret")

	tokenString, _ := issued.GenerateToken("user-1", "a@b.com", "user")

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")
	// Sign with HS384 instead of HS256; the key type is compatible for HMAC
	// algorithms but the pinned method must reject it
	tokenString := signedToken(t, "secret", jwt.SigningMethodHS384, &JWTClaims{
		UserID: "user-1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{"test-aud"},
			Issuer:    "test-iss",
		},
	})

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestJWTUtil_RefreshToken(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	original, _ := jwtUtil.GenerateToken("user-1", "a@b.com", "staff")

	refreshed, err := jwtUtil.RefreshToken(original)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed)

	claims, err := jwtUtil.ValidateToken(refreshed)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "staff", claims.Role)
}

func TestJWTUtil_RefreshToken_Invalid(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")

	_, err := jwtUtil.RefreshToken("invalid.token.string")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestRemainingTTL(t *testing.T) {
	jwtUtil := newTestJWTUtil("secret")
	tokenString, _ := jwtUtil.GenerateToken("user-1", "a@b.com", "user")

	ttl := RemainingTTL(tokenString)
	assert.Greater(t, ttl, TokenTTL-time.Minute)
	assert.LessOrEqual(t, ttl, TokenTTL)
}

func TestRemainingTTL_Expired(t *testing.T) {
	tokenString := signedToken(t, "secret", jwt.SigningMethodHS256, &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	assert.Equal(t, time.Duration(0), RemainingTTL(tokenString))
}

func TestRemainingTTL_Malformed(t *testing.T) {
	assert.Equal(t, time.Duration(0), RemainingTTL("not-a-token"))
}

func signedToken(t *testing.T, secret string, method jwt.SigningMethod, claims *JWTClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return tokenString
}
