package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ppiankov/greenlens/internal/model"
)

const (
	reportsCollection = "reports"
	mongoPingTimeout  = 5 * time.Second
)

// reportDocument wraps a report with its lookup key
type reportDocument struct {
	ID        string       `bson:"_id"`
	CreatedAt time.Time    `bson:"created_at"`
	Report    model.Report `bson:"report"`
}

// MongoStore keeps reports in a MongoDB collection
type MongoStore struct {
	client  *mongo.Client
	reports *mongo.Collection
}

// NewMongoStore connects and pings the server before returning
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = "greenlens"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return NewMongoStoreFromDatabase(client, client.Database(database)), nil
}

// NewMongoStoreFromDatabase wraps an existing connection
func NewMongoStoreFromDatabase(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:  client,
		reports: db.Collection(reportsCollection),
	}
}

// Save upserts the report under its ID
func (s *MongoStore) Save(ctx context.Context, report *model.Report) error {
	if err := checkID(report.ID); err != nil {
		return err
	}

	doc := reportDocument{ID: report.ID, CreatedAt: report.Timestamp, Report: *report}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.reports.ReplaceOne(ctx, bson.M{"_id": report.ID}, doc, opts); err != nil {
		return fmt.Errorf("save report %s: %w", report.ID, err)
	}
	return nil
}

// Get loads a report by ID
func (s *MongoStore) Get(ctx context.Context, id string) (*model.Report, error) {
	var doc reportDocument
	err := s.reports.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	return &doc.Report, nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoPingTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
