package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intake/internal/constants"
)

// MongoSetup creates the submissions collection and its indexes.
type MongoSetup struct {
	db *mongo.Database
}

func NewMongoSetup(db *mongo.Database) *MongoSetup {
	return &MongoSetup{db: db}
}

func (s *MongoSetup) Setup(ctx context.Context) error {
	name := constants.SubmissionsCollection

	collections, err := s.db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(collections) == 0 {
		if err := s.db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_contact_submissions_created_at"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_contact_submissions_email"),
		},
	}

	if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
