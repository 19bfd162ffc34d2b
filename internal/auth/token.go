// Package auth implements token issuance/verification and the
// authorization policy shared by the REST and GraphQL surfaces.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "snapfeed-api"
	tokenAudience = "snapfeed-client"
)

var (
	// ErrInvalidToken covers malformed tokens, wrong signing methods,
	// bad signatures and missing claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for structurally valid tokens whose
	// expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the verified subject claim derived from a token. It lives
// for the duration of one request.
type Identity struct {
	UserID uint
	Email  string
}

// TokenService issues and verifies signed, time-bounded identity tokens.
// Both operations are pure functions of their input and the process
// secret; neither performs I/O.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with secret and issuing
// tokens valid for ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token embedding the identity, valid from now until
// now + ttl.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(id.UserID), 10),
		"email": id.Email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string. It fails with
// ErrExpiredToken when the expiry has passed and ErrInvalidToken for
// every other defect.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return Identity{}, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: uint(userID), Email: email}, nil
}
