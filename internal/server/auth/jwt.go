package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims wraps the opaque session handle in the standard jti claim, so the
// cookie value is tamper-evident while the server still resolves sessions by
// handle.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs handle into an HS256 token valid for validity.
func GenerateToken(handle string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        handle,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetHandleFromToken verifies tokenString and returns the session handle.
// An expired token yields common.ErrTokenExpired; anything else that fails
// verification yields common.ErrInvalidToken.
func GetHandleFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ID, nil
}
