// Package identity is the narrow port to the identity provider. The core
// only needs an opaque owner reference per request; this package extracts
// one from the provider's signed service tokens and carries it on the
// context. Owner references are not validated beyond presence.
package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of provider claims the account service consumes.
type Claims struct {
	OwnerID string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
}

// GenerateToken signs a service token for an owner reference. Used by
// tests and tooling; production tokens come from the identity provider.
func GenerateToken(ownerID, secret string, expiry time.Duration) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("GenerateToken: owner id required")
	}

	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OwnerID: ownerID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a service token and
// returns its claims.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}
	if tc.OwnerID == "" {
		return nil, fmt.Errorf("ValidateToken: token carries no owner id")
	}

	return &Claims{OwnerID: tc.OwnerID}, nil
}
