package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes the API relies on: a unique email index
// on the user collection, a unique logical-id index per resource collection,
// and secondary indexes for the hot search fields.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	if _, err := db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	for _, rt := range domain.ResourceTypes {
		if _, err := db.Collection(rt.Name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: unique,
		}); err != nil {
			return fmt.Errorf("%s id index: %w", rt.Name, err)
		}
	}

	secondary := map[string][]string{
		"Patient":          {"identifier.value", "name.family", "birthDate"},
		"Observation":      {"subject.reference", "code.coding.code", "effectiveDateTime", "category.coding.code"},
		"Practitioner":     {"identifier.value"},
		"Organization":     {"identifier.value", "name"},
		"Device":           {"identifier.value"},
		"Encounter":        {"subject.reference", "period.start"},
		"DiagnosticReport": {"subject.reference", "code.coding.code"},
	}
	for coll, fields := range secondary {
		for _, f := range fields {
			if _, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys: bson.D{{Key: f, Value: 1}},
			}); err != nil {
				return fmt.Errorf("%s %s index: %w", coll, f, err)
			}
		}
	}

	return nil
}
