package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "ADMIN"

var (
	ErrMissingAuthHeader = errors.New("missing Authorization header")
	ErrInvalidAuthHeader = errors.New("invalid Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingSubject    = errors.New("subject missing in token")
	ErrMissingSecret     = errors.New("jwt secret is not configured")
)

// Claims are the fields the admin API reads from a token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	Secret string
}

func New(secret string) *Parser {
	return &Parser{
		Secret: secret,
	}
}

// ParseToken validates the bearer token in authHeader and returns its claims.
// An empty secret rejects every token.
func (p *Parser) ParseToken(authHeader string) (*Claims, error) {
	if p.Secret == "" {
		return nil, ErrMissingSecret
	}
	if authHeader == "" {
		return nil, ErrMissingAuthHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, ErrInvalidAuthHeader
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(p.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// Issue signs an HS256 token for subject with role, valid for ttl.
func (p *Parser) Issue(subject, role string, ttl time.Duration) (string, error) {
	if p.Secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(p.Secret))
}
