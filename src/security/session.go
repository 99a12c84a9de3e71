// backend/src/security/session.go
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService mints and validates the signed session tokens that tie a
// browser's uploads, mappings and reports together. There are no accounts:
// the token carries nothing but an opaque session ID and an expiry.
type SessionService struct {
	secret []byte
	expiry time.Duration
}

func NewSessionService(secret string, expiry time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), expiry: expiry}
}

// IssueToken signs a new HS256 token for the given session ID.
func (s *SessionService) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies a session token and returns the session ID it
// carries.
func (s *SessionService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token claims")
	}
	return claims.Subject, nil
}
