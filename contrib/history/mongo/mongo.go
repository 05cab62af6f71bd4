// Package mongo provides a MongoDB-backed query history, recording every
// answered question for later audit and inspection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sweetpotato0/docqa/rag/agentic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryStore persists answered queries in MongoDB.
type HistoryStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// HistoryConfig holds MongoDB connection configuration
type HistoryConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultHistoryConfig returns default MongoDB configuration
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "docqa",
		Collection: "query_history",
	}
}

// Entry is one answered query.
type Entry struct {
	Query      string    `bson:"query" json:"query"`
	Answer     string    `bson:"answer" json:"answer"`
	Sources    []string  `bson:"sources" json:"sources"`
	Iterations int       `bson:"iterations" json:"iterations"`
	DocsUsed   int       `bson:"docs_used" json:"docs_used"`
	AskedAt    time.Time `bson:"asked_at" json:"asked_at"`
}

// NewHistoryStore creates a new MongoDB-based history store
func NewHistoryStore(config *HistoryConfig) (*HistoryStore, error) {
	if config == nil {
		config = DefaultHistoryConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(config.Database).Collection(config.Collection)

	store := &HistoryStore{
		client:     client,
		collection: collection,
	}

	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return store, nil
}

// createIndexes creates indexes for efficient queries
func (s *HistoryStore) createIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "asked_at", Value: -1}},
	}
	if _, err := s.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create asked_at index: %w", err)
	}
	return nil
}

// Record stores one answered query.
func (s *HistoryStore) Record(ctx context.Context, query string, result *agentic.Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	entry := Entry{
		Query:      query,
		Answer:     result.Answer,
		Sources:    result.Sources,
		Iterations: len(result.Iterations),
		DocsUsed:   result.TotalDocsUsed,
		AskedAt:    time.Now().UTC(),
	}

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// Recent returns the most recently answered queries, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "asked_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}
	return entries, nil
}

// Clear removes all history entries.
func (s *HistoryStore) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Count returns the number of history entries.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return int(count), nil
}

// Close disconnects from MongoDB.
func (s *HistoryStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
