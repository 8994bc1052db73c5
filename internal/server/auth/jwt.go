// Package auth issues and verifies the HS256 tokens used by the gallery:
// guest session tokens carrying the guest's email, and the site gate marker
// stored in the site-authenticated cookie.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// GateValidity is how long a site gate marker stays valid.
const GateValidity = 30 * 24 * time.Hour

const gateSubject = "site-gate"

// SessionClaims identifies a guest session by email.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateSessionToken signs a session token for email.
func GenerateSessionToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Email: email,
	})

	return token.SignedString(secretKey)
}

// ParseSessionToken verifies tokenString and returns the session email.
// Expired tokens yield common.ErrTokenExpired, anything else that does not
// verify yields common.ErrInvalidToken.
func ParseSessionToken(tokenString string, secretKey []byte) (string, error) {
	claims := &SessionClaims{}
	if err := parse(tokenString, claims, secretKey); err != nil {
		return "", err
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return "", common.ErrInvalidToken
	}
	return email, nil
}

// GenerateGateToken signs a site gate marker.
func GenerateGateToken(secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gateSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	})

	return token.SignedString(secretKey)
}

// ValidateGateToken checks a site gate marker.
func ValidateGateToken(tokenString string, secretKey []byte) error {
	claims := &jwt.RegisteredClaims{}
	if err := parse(tokenString, claims, secretKey); err != nil {
		return err
	}
	if claims.Subject != gateSubject {
		return common.ErrInvalidToken
	}
	return nil
}

func parse(tokenString string, claims jwt.Claims, secretKey []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	return nil
}
