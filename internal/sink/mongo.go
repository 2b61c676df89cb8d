package sink

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matchsheet/internal/stats"
)

// MongoSink stores one document per row in a collection named after the sheet
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	header     []string
}

// NewMongo connects to MongoDB
func NewMongo(ctx context.Context, uri, dbName, collection string, header []string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to mongo: %w", ErrSinkUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: failed to ping mongo: %w", ErrSinkUnavailable, err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
		header:     header,
	}, nil
}

// Document builds the stored document; header order is kept
func (s *MongoSink) Document(gameID int64, row stats.Row) bson.D {
	doc := bson.D{
		{Key: "game_id", Value: gameID},
		{Key: "recorded_at", Value: time.Now().UTC()},
	}
	for i, name := range s.header {
		doc = append(doc, bson.E{Key: name, Value: row[i]})
	}
	return doc
}

// Append inserts the row as a document
func (s *MongoSink) Append(ctx context.Context, gameID int64, row stats.Row) error {
	if err := checkWidth(s.header, row); err != nil {
		return err
	}
	if _, err := s.collection.InsertOne(ctx, s.Document(gameID, row)); err != nil {
		return fmt.Errorf("%w: failed to insert game %d: %w", ErrSinkUnavailable, gameID, err)
	}
	return nil
}

// Close disconnects the client
func (s *MongoSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
