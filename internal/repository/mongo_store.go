package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

type recordDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps each record as one document keyed by _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore constructs a MongoStore over database.collection.
func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// Get loads the document stored under key.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc recordDocument
	if err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("mongodb find %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

// Set upserts the document stored under key.
func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	filter := bson.D{{Key: "_id", Value: key}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "value", Value: string(value)},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	if _, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongodb upsert %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
