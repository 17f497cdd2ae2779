package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
)

const (
	defaultSearchCount = 100
	maxSearchCount     = 1000
)

// ResourceService implements the generic CRUD semantics shared by every
// registered resource type. The document body is opaque apart from "id".
type ResourceService struct {
	repo  ports.ResourceRepository
	audit ports.AuditTrail
}

func NewResourceService(repo ports.ResourceRepository, audit ports.AuditTrail) *ResourceService {
	return &ResourceService{repo: repo, audit: audit}
}

func (s *ResourceService) Create(ctx context.Context, rt domain.ResourceType, res domain.Resource) (domain.Resource, error) {
	// A JSON null body binds to a nil map; writing the id would panic.
	if res == nil {
		return nil, domain.ErrResourceInvalid
	}
	if res.ID() == "" {
		res["id"] = rt.IDPrefix() + uuid.NewString()
	}

	if err := s.repo.Insert(ctx, rt, res); err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditCreate, rt, res.ID())
	return res, nil
}

func (s *ResourceService) Get(ctx context.Context, rt domain.ResourceType, id string) (domain.Resource, error) {
	return s.repo.FindByID(ctx, rt, id)
}

func (s *ResourceService) Search(ctx context.Context, rt domain.ResourceType, q ports.SearchQuery) ([]domain.Resource, error) {
	if q.Count <= 0 {
		q.Count = defaultSearchCount
	}
	if q.Count > maxSearchCount {
		q.Count = maxSearchCount
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.repo.Search(ctx, rt, q)
}

func (s *ResourceService) Update(ctx context.Context, rt domain.ResourceType, id string, res domain.Resource) (domain.Resource, error) {
	if res == nil {
		return nil, domain.ErrResourceInvalid
	}
	// The path id is authoritative; whatever the body says is overwritten.
	res["id"] = id

	if err := s.repo.Replace(ctx, rt, id, res); err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditUpdate, rt, id)
	return res, nil
}

func (s *ResourceService) Delete(ctx context.Context, rt domain.ResourceType, id string) error {
	if err := s.repo.Delete(ctx, rt, id); err != nil {
		return err
	}

	s.record(ctx, domain.AuditDelete, rt, id)
	return nil
}

func (s *ResourceService) record(ctx context.Context, action string, rt domain.ResourceType, id string) {
	if s.audit == nil {
		return
	}
	s.audit.Submit(domain.AuditEvent{
		Actor:        actorFromContext(ctx),
		Action:       action,
		ResourceType: rt.Name,
		ResourceID:   id,
		Outcome:      domain.AuditOutcomeSuccess,
		Timestamp:    time.Now().UTC(),
	})
}

type actorKey struct{}

// WithActor stamps the acting user's email onto ctx for audit attribution.
func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorKey{}, email)
}

func actorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
