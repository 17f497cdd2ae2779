// Package token issues and verifies the signed bearer tokens used by the
// API. Verification is a pure computation: signature check plus timestamp
// comparison, never I/O. Revocation and live-account checks happen elsewhere.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

// Claims is the identity payload embedded in every access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Issuer mints and verifies HS256 access tokens with a fixed TTL.
type Issuer struct {
	secret []byte
	ttl    time.Duration

	// now is swappable for tests.
	now func() time.Time
}

const defaultTTL = 30 * time.Minute

// NewIssuer creates an Issuer signing with secret. A non-positive ttl falls
// back to 30 minutes.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a token for user. The jti uniquely identifies this token so it
// can be revoked before expiry.
func (i *Issuer) Issue(user *domain.User) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email: user.Email,
		Role:  user.Role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates raw. It distinguishes expiry from every other
// failure: an expired token means "re-login", anything else is a hard reject.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !tkn.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// TTL reports the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Remaining reports how long until the claims expire, zero when already past.
// Used to bound the lifetime of revocation-list entries.
func (i *Issuer) Remaining(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Sub(i.now())
	if d < 0 {
		return 0
	}
	return d
}
