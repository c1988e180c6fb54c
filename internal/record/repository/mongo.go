package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/devreg/devreg/internal/record"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepo implements Repository on top of a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) FindOne(ctx context.Context, f record.Filter) (record.Document, error) {
	var doc record.Document
	if err := m.col.FindOne(ctx, f.BSON()).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find one: %w", err)
	}
	if doc == nil {
		doc = record.Document{}
	}
	return doc, nil
}

func (m *MongoRepo) Count(ctx context.Context, f record.Filter) (int64, error) {
	n, err := m.col.CountDocuments(ctx, f.BSON())
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (m *MongoRepo) Insert(ctx context.Context, doc record.Document) (interface{}, error) {
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert one: %w", err)
	}
	return res.InsertedID, nil
}

func (m *MongoRepo) UpdateMany(ctx context.Context, f record.Filter, c record.Changes) (record.UpdateResult, error) {
	res, err := m.col.UpdateMany(ctx, f.BSON(), c.BSON())
	if err != nil {
		return record.UpdateResult{}, fmt.Errorf("update many: %w", err)
	}
	return record.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (m *MongoRepo) Find(ctx context.Context, f record.Filter) ([]record.Document, error) {
	cur, err := m.col.Find(ctx, f.BSON())
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)
	out := []record.Document{}
	for cur.Next(ctx) {
		var doc record.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return out, nil
}
