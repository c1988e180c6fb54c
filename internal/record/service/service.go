package service

import (
	"context"
	"time"

	"github.com/devreg/devreg/internal/cache"
	"github.com/devreg/devreg/internal/record"
	"github.com/devreg/devreg/internal/record/repository"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/devreg/devreg/pkg/metrics"
)

// Service wraps a repository with logging, metrics and an optional count cache.
type Service struct {
	repo     repository.Repository
	counts   *cache.CountCache
	database string
}

// Option configures a Service.
type Option func(*Service)

// WithCountCache caches Count results. Writes through the service invalidate it.
func WithCountCache(c *cache.CountCache) Option {
	return func(s *Service) { s.counts = c }
}

// WithDatabaseName sets the name reported by the demo's "DB" line.
func WithDatabaseName(name string) Option {
	return func(s *Service) { s.database = name }
}

func New(repo repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DatabaseName is the configured database name.
func (s *Service) DatabaseName() string { return s.database }

func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		logger.Debugf("%s failed: %v", op, err)
	}
	metrics.DBOperations.WithLabelValues(op, result).Inc()
	metrics.DBOperationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// FindOne returns the first matching document or nil.
func (s *Service) FindOne(ctx context.Context, f record.Filter) (doc record.Document, err error) {
	defer func(start time.Time) { observe("find_one", start, err) }(time.Now())
	return s.repo.FindOne(ctx, f)
}

// Get is FindOne that reports a missing record as repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, f record.Filter) (record.Document, error) {
	doc, err := s.FindOne(ctx, f)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

// Count counts matching records, consulting the cache first.
func (s *Service) Count(ctx context.Context, f record.Filter) (n int64, err error) {
	if n, ok, cerr := s.counts.Get(ctx, f); cerr != nil {
		metrics.CountCache.WithLabelValues("error").Inc()
		logger.Warnf("count cache get: %v", cerr)
	} else if ok {
		metrics.CountCache.WithLabelValues("hit").Inc()
		return n, nil
	} else if s.counts != nil {
		metrics.CountCache.WithLabelValues("miss").Inc()
	}

	defer func(start time.Time) { observe("count", start, err) }(time.Now())
	n, err = s.repo.Count(ctx, f)
	if err != nil {
		return 0, err
	}
	if cerr := s.counts.Set(ctx, f, n); cerr != nil {
		logger.Warnf("count cache set: %v", cerr)
	}
	return n, nil
}

// Insert stores doc and returns it as stored, with its _id first.
func (s *Service) Insert(ctx context.Context, doc record.Document) (stored record.Document, err error) {
	defer func(start time.Time) { observe("insert_one", start, err) }(time.Now())
	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	serial, _ := record.Lookup(doc, "SerialNumber")
	logger.Infof("inserted record %v (serial %v)", id, serial)
	return record.WithID(doc, id), nil
}

// UpdateMany applies changes to every matching record.
func (s *Service) UpdateMany(ctx context.Context, f record.Filter, c record.Changes) (res record.UpdateResult, err error) {
	defer func(start time.Time) { observe("update_many", start, err) }(time.Now())
	res, err = s.repo.UpdateMany(ctx, f, c)
	if err != nil {
		return res, err
	}
	if res.Modified > 0 {
		s.invalidate(ctx)
	}
	logger.Infof("update %s: matched=%d modified=%d", f.Key(), res.Matched, res.Modified)
	return res, nil
}

// Find returns every matching document.
func (s *Service) Find(ctx context.Context, f record.Filter) (docs []record.Document, err error) {
	defer func(start time.Time) { observe("find", start, err) }(time.Now())
	return s.repo.Find(ctx, f)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.counts.Invalidate(ctx); err != nil {
		logger.Warnf("count cache invalidate: %v", err)
	}
}
