package ports

import (
	"context"
	"time"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/token"
)

// RegisterInput carries everything needed to create a staff account.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      domain.Role
	Password  string
}

// AuthService implements the authentication lifecycle: registration, login,
// per-request identity resolution, and early token revocation.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials and mints a bearer token. Unknown email,
	// wrong password and inactive account all yield ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// CurrentUser resolves a raw bearer token to a live account. It checks
	// the signature and expiry, the revocation list, and finally that the
	// referenced user still exists and is active.
	CurrentUser(ctx context.Context, rawToken string) (*domain.User, *token.Claims, error)

	// Logout revokes the presented token for its remaining lifetime.
	Logout(ctx context.Context, rawToken string) error

	// Deactivate soft-disables an account. Outstanding tokens are rejected by
	// the live-account check on the next request.
	Deactivate(ctx context.Context, userID string) error
}

// TokenRevoker is the revocation list consulted on every authenticated
// request. Entries expire on their own once the token itself would have.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
