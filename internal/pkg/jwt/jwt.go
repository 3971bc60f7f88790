package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenInfo is what can be learned from a bearer token without the issuer's key.
type TokenInfo struct {
	Subject   string
	ExpiresAt *time.Time
}

// Inspect decodes a third-party bearer token without verifying its signature.
// The Bakong API issues JWT access tokens that expire; the service only uses
// this to warn operators early, the issuer remains the authority.
func Inspect(tokenString string, now time.Time) (*TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
		if now.After(exp) {
			return info, ErrExpiredToken
		}
	}
	return info, nil
}
