package service

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recipelab/backend/internal/cache"
)

// ErrUnauthenticated is returned for any credential that fails
// verification: expired, malformed or badly signed. Never retried.
var ErrUnauthenticated = errors.New("invalid or expired token")

// Identity is the verified result of a credential check.
type Identity struct {
	UID         string
	DisplayName string
}

// IdentityVerifier validates a raw bearer credential and resolves it to a
// stable user identity.
type IdentityVerifier interface {
	Verify(rawToken string) (*Identity, error)
}

// AuthService verifies signed identity tokens, caching verified results
// keyed by the raw credential so hot clients skip re-validation.
type AuthService struct {
	jwtSecret string
	tokens    cache.Cache[Identity]
}

// NewAuthService creates the verifier. tokens is the process-wide token
// cache.
func NewAuthService(jwtSecret string, tokens cache.Cache[Identity]) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		tokens:    tokens,
	}
}

// Verify resolves a raw credential to an identity, cache first. The cache
// is populated on success only.
func (s *AuthService) Verify(rawToken string) (*Identity, error) {
	if ident, ok := s.tokens.Get(rawToken); ok {
		return &ident, nil
	}

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		log.Printf("[Auth] Invalid token: %v", err)
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, ErrUnauthenticated
	}

	ident := Identity{UID: uid}
	if name, ok := claims["name"].(string); ok {
		ident.DisplayName = name
	}

	s.tokens.Set(rawToken, ident)
	return &ident, nil
}

// IssueToken mints a signed token for a user. Used by tooling and tests;
// production credentials come from the external identity provider.
func (s *AuthService) IssueToken(uid, displayName string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid": uid,
		"exp": time.Now().Add(ttl).Unix(),
	}
	if displayName != "" {
		claims["name"] = displayName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
