package ports

import (
	"context"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

// UserRepository defines persistence for staff accounts. Email uniqueness is
// enforced by the store; Create surfaces a violation as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// SetActive flips the soft-disable flag. Accounts are never deleted.
	SetActive(ctx context.Context, id string, active bool) error
}
