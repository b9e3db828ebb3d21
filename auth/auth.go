// Package auth validates bearer tokens for the admin HTTP surface. The
// player-facing board API is deliberately unauthenticated (see
// SPEC_FULL.md's Non-goals); this package only gates /admin/*.
package auth

import (
	"fmt"
	"net/url"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Validator checks bearer tokens against a JWKS endpoint derived from an
// issuer base URL, generalized from the teacher's Neon-Auth-specific
// validator to any OIDC-style issuer exposing /.well-known/jwks.json.
type Validator struct {
	jwks           keyfunc.Keyfunc
	expectedIssuer string
}

// NewValidator builds a Validator for the given issuer base URL (e.g.
// "https://auth.example.com"). It fetches the issuer's JWKS once at
// construction time, matching keyfunc.NewDefault's teacher usage.
func NewValidator(issuerBaseURL string) (*Validator, error) {
	if issuerBaseURL == "" {
		return nil, fmt.Errorf("auth: issuer base URL is empty")
	}
	u, err := url.Parse(issuerBaseURL)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid issuer base URL: %w", err)
	}
	jwks, err := keyfunc.NewDefault([]string{issuerBaseURL + "/.well-known/jwks.json"})
	if err != nil {
		return nil, err
	}
	return &Validator{
		jwks:           jwks,
		expectedIssuer: u.Scheme + "://" + u.Host,
	}, nil
}

// Validate parses and verifies tokenString, returning its claims.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithIssuer(v.expectedIssuer),
		jwt.WithValidMethods([]string{"EdDSA", "RS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	return claims, nil
}

// SubjectFromClaims returns the admin's identifier ("sub"), or "" if
// absent.
func SubjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}
