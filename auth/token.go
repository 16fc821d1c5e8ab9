package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

// Tokens issues and validates the bearer tokens handed out at login
type Tokens struct {
	secret []byte
}

// NewTokens creates a token manager with the given signing secret
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issue signs a token for the user, valid for seven days
func (t *Tokens) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(t.secret)
}

// Validate parses and verifies a token, returning the user ID it carries
func (t *Tokens) Validate(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, errors.New("invalid user id in token")
	}
	return userID, nil
}
