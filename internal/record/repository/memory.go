package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/devreg/devreg/internal/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps documents in process. Values pass through the bson codec
// on the way in and out so filters compare the same types the server would
// see (a Go int and a stored int32 are equal) and callers never share the
// stored copy.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs []record.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func normalize(v interface{}) (record.Document, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := record.Document{}
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matches(doc, filter record.Document) bool {
	for _, e := range filter {
		got, ok := record.Lookup(doc, e.Key)
		if !ok || !reflect.DeepEqual(got, e.Value) {
			return false
		}
	}
	return true
}

func (m *MemoryRepo) FindOne(ctx context.Context, f record.Filter) (record.Document, error) {
	filter, err := normalize(f.BSON())
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.docs {
		if matches(d, filter) {
			return normalize(d)
		}
	}
	return nil, nil
}

func (m *MemoryRepo) Count(ctx context.Context, f record.Filter) (int64, error) {
	filter, err := normalize(f.BSON())
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) Insert(ctx context.Context, doc record.Document) (interface{}, error) {
	stored, err := normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("insert one: %w", err)
	}
	id, ok := record.Lookup(stored, "_id")
	if !ok {
		id = primitive.NewObjectID()
		stored = record.WithID(stored, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if other, _ := record.Lookup(d, "_id"); reflect.DeepEqual(other, id) {
			return nil, fmt.Errorf("insert one: duplicate _id %v", id)
		}
	}
	m.docs = append(m.docs, stored)
	return id, nil
}

func (m *MemoryRepo) UpdateMany(ctx context.Context, f record.Filter, c record.Changes) (record.UpdateResult, error) {
	filter, err := normalize(f.BSON())
	if err != nil {
		return record.UpdateResult{}, fmt.Errorf("update many: %w", err)
	}
	set, err := normalize(bson.M(c))
	if err != nil {
		return record.UpdateResult{}, fmt.Errorf("update many: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var res record.UpdateResult
	for i, d := range m.docs {
		if !matches(d, filter) {
			continue
		}
		res.Matched++
		changed := false
		for _, e := range set {
			if old, ok := record.Lookup(d, e.Key); !ok || !reflect.DeepEqual(old, e.Value) {
				d = record.Set(d, e.Key, e.Value)
				changed = true
			}
		}
		if changed {
			m.docs[i] = d
			res.Modified++
		}
	}
	return res, nil
}

func (m *MemoryRepo) Find(ctx context.Context, f record.Filter) ([]record.Document, error) {
	filter, err := normalize(f.BSON())
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []record.Document{}
	for _, d := range m.docs {
		if !matches(d, filter) {
			continue
		}
		doc, err := normalize(d)
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, doc)
	}
	return out, nil
}
