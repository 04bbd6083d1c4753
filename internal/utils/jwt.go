package utils

import (
	"errors"
	"time"

	"user_manager/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = 30 * 24 * time.Hour

// JWTClaims carries the identity subset embedded in every token. Tokens are
// integrity-protected, not encrypted, so nothing secret belongs here.
type JWTClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil issues and verifies HS256 bearer tokens bound to a configured
// audience and issuer.
type JWTUtil struct {
	secretKey string
	audience  string
	issuer    string
	ttl       time.Duration
}

// NewJWTUtil creates a new JWTUtil.
func NewJWTUtil(secretKey, audience, issuer string) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, audience: audience, issuer: issuer, ttl: TokenTTL}
}

// GenerateToken issues a signed token embedding the user's identity claims.
func (ju *JWTUtil) GenerateToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{ju.audience},
			Issuer:    ju.issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ju.secretKey))
}

// ValidateToken verifies signature, audience, issuer, expiry and not-before.
// The expected algorithm is pinned to HS256 so a token signed with anything
// else is rejected outright. Any failure surfaces as apperr.ErrInvalidToken.
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(ju.secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ju.audience),
		jwt.WithIssuer(ju.issuer),
	)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken re-validates an existing token and issues a new one carrying
// the same identity claims with a fresh TTL.
func (ju *JWTUtil) RefreshToken(tokenString string) (string, error) {
	claims, err := ju.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return ju.GenerateToken(claims.UserID, claims.Email, claims.Role)
}

// RemainingTTL returns how long a token stays valid, without verifying it.
// Used to size denylist entries; 0 for malformed or already-expired tokens.
func RemainingTTL(tokenString string) time.Duration {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil || claims.ExpiresAt == nil {
		return 0
	}
	d := time.Until(claims.ExpiresAt.Time)
	if d < 0 {
		return 0
	}
	return d
}
