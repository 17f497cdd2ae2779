package ports

import (
	"context"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

// ResourceService implements the five CRUD operations shared by every
// registered resource type.
type ResourceService interface {
	// Create stores a new resource, assigning an id when the body carries
	// none. An id collision yields ErrResourceExists.
	Create(ctx context.Context, rt domain.ResourceType, res domain.Resource) (domain.Resource, error)
	Get(ctx context.Context, rt domain.ResourceType, id string) (domain.Resource, error)
	Search(ctx context.Context, rt domain.ResourceType, q SearchQuery) ([]domain.Resource, error)
	// Update replaces the stored document wholesale; the path id wins over
	// any id in the body.
	Update(ctx context.Context, rt domain.ResourceType, id string, res domain.Resource) (domain.Resource, error)
	Delete(ctx context.Context, rt domain.ResourceType, id string) error
}
