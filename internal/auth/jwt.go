package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopward/catalog/pkg/middleware"
)

// TokenClaims represents the JWT claims carried by an admin access token.
type TokenClaims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates admin access tokens issued by the identity service.
// The catalog service never mints tokens, it only verifies them.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for HMAC-signed tokens.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// Validate parses and validates an access token, returning the claims in the
// shape the HTTP auth middleware expects.
func (v *JWTValidator) Validate(tokenString string) (*middleware.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	return &middleware.Claims{
		AdminID: claims.AdminID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}
