package repository

import (
	"context"
	"errors"

	"github.com/devreg/devreg/internal/record"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository is the set of collection operations the demo and the API use.
// Documents are returned as stored.
type Repository interface {
	// FindOne returns the first matching document, or nil when nothing matches.
	FindOne(ctx context.Context, f record.Filter) (record.Document, error)
	Count(ctx context.Context, f record.Filter) (int64, error)
	// Insert stores doc unchanged and returns its _id, generated when doc has none.
	Insert(ctx context.Context, doc record.Document) (interface{}, error)
	UpdateMany(ctx context.Context, f record.Filter, c record.Changes) (record.UpdateResult, error)
	Find(ctx context.Context, f record.Filter) ([]record.Document, error)
}
