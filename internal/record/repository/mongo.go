package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redundancy-gate/gateway/internal/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRecord is the persisted form; _id is an ObjectID assigned on insert.
type mongoRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m mongoRecord) toRecord() *record.Record {
	return &record.Record{ID: m.ID.Hex(), Content: m.Content, CreatedAt: m.CreatedAt.UTC()}
}

// MongoStore keeps records in a MongoDB collection named after the table.
type MongoStore struct {
	col    *mongo.Collection
	unique bool
}

func NewMongoStore(col *mongo.Collection, unique bool) *MongoStore {
	return &MongoStore{col: col, unique: unique}
}

// Migrate ensures an index on content, unique when requested.
func (m *MongoStore) Migrate(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "content", Value: 1}},
		Options: options.Index().SetUnique(m.unique).SetName("content_1"),
	}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("create content index: %w", err)
	}
	return nil
}

func (m *MongoStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	var doc mongoRecord
	if err := m.col.FindOne(ctx, bson.M{"content": content}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toRecord(), nil
}

func (m *MongoStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	// Mongo stores milliseconds; truncate so the returned value matches later reads.
	doc := mongoRecord{Content: content, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, mongoInsertError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toRecord(), nil
}

func mongoInsertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateContent, err)
	}
	return err
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
