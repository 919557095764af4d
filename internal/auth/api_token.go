package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAPITokenTTL bounds API tokens minted without an explicit lifetime.
const DefaultAPITokenTTL = 24 * time.Hour

// IssueAPIToken signs an HS256 bearer token for the gateway's own API.
// subject ends up as the "sub" claim; scope is optional.
func IssueAPIToken(secret []byte, subject, scope string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("cannot issue API token: no signing secret configured")
	}
	if subject == "" {
		return "", errors.New("cannot issue API token: no subject")
	}
	if ttl <= 0 {
		ttl = DefaultAPITokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if scope != "" {
		claims["scope"] = scope
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
