package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTypeSession = "session"

// TokenGenerator signs and validates the session cookie value.
// The token only carries the session id; everything else lives in the store.
type TokenGenerator struct {
	secret string
	expiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, expiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret: secret,
		expiry: expiry,
	}
}

// Generate creates a signed token for the session id issued at issuedAt
func (tg *TokenGenerator) Generate(sessionID string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sessionID,
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(tg.expiry).Unix(),
		"type": tokenTypeSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate checks the signature, expiry and type of a token and returns the session id
func (tg *TokenGenerator) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != tokenTypeSession {
		return "", fmt.Errorf("token is not a session token")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("sid not found in token")
	}

	return sid, nil
}
