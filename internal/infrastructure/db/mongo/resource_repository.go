package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
)

// ResourceRepository stores FHIR resource documents, one collection per
// resource type, keyed by the logical "id" field. Mongo's own _id never
// leaks into responses.
type ResourceRepository struct {
	db *mongo.Database
}

func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) coll(rt domain.ResourceType) *mongo.Collection {
	return r.db.Collection(rt.Name)
}

// noMongoID suppresses the driver's _id in every read.
var noMongoID = bson.M{"_id": 0}

func (r *ResourceRepository) Insert(ctx context.Context, rt domain.ResourceType, res domain.Resource) error {
	if _, err := r.coll(rt).InsertOne(ctx, bson.M(res)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrResourceExists
		}
		return fmt.Errorf("insert %s: %w", rt.Name, err)
	}
	// InsertOne mutates the map with the generated _id; drop it again.
	delete(res, "_id")
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, rt domain.ResourceType, id string) (domain.Resource, error) {
	var doc bson.M
	err := r.coll(rt).FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(noMongoID)).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("find %s: %w", rt.Name, err)
	}
	return domain.Resource(doc), nil
}

func (r *ResourceRepository) Search(ctx context.Context, rt domain.ResourceType, q ports.SearchQuery) ([]domain.Resource, error) {
	opts := options.Find().
		SetProjection(noMongoID).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Count))
	if q.SortField != "" {
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.SortField, Value: dir}})
	}

	cursor, err := r.coll(rt).Find(ctx, BuildFilter(q.Filters), opts)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", rt.Name, err)
	}
	defer cursor.Close(ctx)

	results := make([]domain.Resource, 0, q.Count)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rt.Name, err)
		}
		results = append(results, domain.Resource(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", rt.Name, err)
	}
	return results, nil
}

func (r *ResourceRepository) Replace(ctx context.Context, rt domain.ResourceType, id string, res domain.Resource) error {
	result, err := r.coll(rt).ReplaceOne(ctx, bson.M{"id": id}, bson.M(res))
	if err != nil {
		return fmt.Errorf("replace %s: %w", rt.Name, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, rt domain.ResourceType, id string) error {
	result, err := r.coll(rt).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", rt.Name, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

// BuildFilter translates resolved search filters into a Mongo query document.
// Exported as a pure function so filter construction is testable without a
// running database.
func BuildFilter(filters []ports.SearchFilter) bson.M {
	query := bson.M{}
	for _, f := range filters {
		switch f.Param.Kind {
		case domain.MatchContains:
			query[f.Param.Field] = bson.M{"$regex": f.Value, "$options": "i"}
		case domain.MatchDate:
			if f.Value != "" {
				// Exact day: [value, value+1d) in ISO-8601 string order.
				query[f.Param.Field] = bson.M{"$gte": f.Value, "$lt": f.Value + "T23:59:59.999Z"}
				continue
			}
			rng := bson.M{}
			if f.From != "" {
				rng["$gte"] = f.From
			}
			if f.To != "" {
				// The upper bound is inclusive of the whole end day.
				rng["$lt"] = f.To + "T23:59:59.999Z"
			}
			if len(rng) > 0 {
				query[f.Param.Field] = rng
			}
		default:
			query[f.Param.Field] = f.Value
		}
	}
	return query
}
