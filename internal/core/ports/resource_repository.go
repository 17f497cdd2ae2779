package ports

import (
	"context"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

// SearchFilter is one resolved search criterion. For MatchDate either Value
// (exact day) or From/To (half-open range) is populated.
type SearchFilter struct {
	Param domain.SearchParam
	Value string
	From  string
	To    string
}

// SearchQuery carries every parameter of a paginated resource search.
type SearchQuery struct {
	Filters []SearchFilter
	Count   int
	Offset  int
	// SortField is empty when no ordering was requested.
	SortField string
	SortDesc  bool
}

// ResourceRepository defines persistence for FHIR resource documents, one
// collection per resource type.
type ResourceRepository interface {
	Insert(ctx context.Context, rt domain.ResourceType, res domain.Resource) error
	FindByID(ctx context.Context, rt domain.ResourceType, id string) (domain.Resource, error)
	Search(ctx context.Context, rt domain.ResourceType, q SearchQuery) ([]domain.Resource, error)
	Replace(ctx context.Context, rt domain.ResourceType, id string, res domain.Resource) error
	Delete(ctx context.Context, rt domain.ResourceType, id string) error
}
