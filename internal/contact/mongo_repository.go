package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intake/internal/constants"
	"intake/pkg/metrics"
)

type MongoRepository struct {
	collection *mongo.Collection
	clock      *MonotonicClock
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.SubmissionsCollection),
		clock:      defaultClock,
	}
}

func (r *MongoRepository) Insert(ctx context.Context, sub Submission) (*StoredSubmission, error) {
	stored := &StoredSubmission{
		ID:           uuid.New().String(),
		Name:         sub.Name(),
		Email:        sub.Email(),
		Phone:        optional(sub.Phone()),
		Organization: optional(sub.Organization()),
		Message:      sub.Message(),
		CreatedAt:    r.clock.Now(),
	}

	start := time.Now()
	_, err := r.collection.InsertOne(ctx, stored)
	observeMongo("insert", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	return stored, nil
}

func (r *MongoRepository) ListAll(ctx context.Context) ([]StoredSubmission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	start := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		observeMongo("list", start, err)
		return nil, fmt.Errorf("failed to find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	submissions := make([]StoredSubmission, 0)
	err = cursor.All(ctx, &submissions)
	observeMongo("list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}

	for i := range submissions {
		submissions[i].CreatedAt = submissions[i].CreatedAt.UTC()
	}

	return submissions, nil
}

func observeMongo(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery(constants.DriverMongoDB, operation, status)
	metrics.ObserveDatabaseQueryDuration(constants.DriverMongoDB, operation, time.Since(start))
}
