package session

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zeebo/blake3"
)

// ErrNotJWT is returned by InspectClaims for tokens that are not JWTs.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the subset of JWT claims shown by `skilladmin status`.
// They are decoded without verification and never used for authorization.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an exp claim in the past.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// InspectClaims decodes a token's claims without checking its signature.
func InspectClaims(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if out.Subject == "" {
		// Servers that sign {id: ...} instead of a registered subject.
		if id, ok := claims["id"].(string); ok {
			out.Subject = id
		} else if id, ok := claims["_id"].(string); ok {
			out.Subject = id
		}
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		out.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, nil
}

// Fingerprint returns a short, stable digest of a token for logs.
// The raw token is never logged.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
