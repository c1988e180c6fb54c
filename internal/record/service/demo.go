package service

import (
	"context"
	"fmt"
	"io"

	"github.com/devreg/devreg/internal/record"
	"github.com/devreg/devreg/pkg/logger"
)

// DemoOptions controls RunDemo. Zero values fall back to the reference run:
// update serial "23" to region "2", then list serial "24".
type DemoOptions struct {
	// Insert adds the sample record before the update step.
	Insert       bool
	UpdateSerial string
	Region       interface{}
	QuerySerial  string
}

func (o DemoOptions) withDefaults() DemoOptions {
	if o.UpdateSerial == "" {
		o.UpdateSerial = "23"
	}
	if o.Region == nil {
		o.Region = "2"
	}
	if o.QuerySerial == "" {
		o.QuerySerial = "24"
	}
	return o
}

// RunDemo walks the collection through read, count, insert, update and query,
// writing one console line per step to w. The first error stops the run.
func (s *Service) RunDemo(ctx context.Context, w io.Writer, opts DemoOptions) error {
	opts = opts.withDefaults()
	logger.Debugf("demo: database=%s insert=%v update=%s query=%s", s.database, opts.Insert, opts.UpdateSerial, opts.QuerySerial)

	fmt.Fprintln(w, "DB : ", s.database)

	first, err := s.FindOne(ctx, nil)
	if err != nil {
		return fmt.Errorf("find one: %w", err)
	}
	b, err := record.MarshalExtJSON(first)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Collection : ", string(b))

	if err := s.printCount(ctx, w); err != nil {
		return err
	}

	sample, err := record.Sample()
	if err != nil {
		return err
	}
	if opts.Insert {
		if _, err := s.Insert(ctx, sample); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	if err := s.printCount(ctx, w); err != nil {
		return err
	}

	if _, err := s.UpdateMany(ctx, record.BySerial(opts.UpdateSerial), record.SetRegion(opts.Region)); err != nil {
		return fmt.Errorf("update serial %s: %w", opts.UpdateSerial, err)
	}
	if err := s.printCount(ctx, w); err != nil {
		return err
	}

	query := record.BySerial(opts.QuerySerial)
	docs, err := s.Find(ctx, query)
	if err != nil {
		return fmt.Errorf("find serial %s: %w", opts.QuerySerial, err)
	}
	total, err := s.Count(ctx, query)
	if err != nil {
		return fmt.Errorf("count serial %s: %w", opts.QuerySerial, err)
	}
	fmt.Fprintln(w, "Printing all data found using query, total items found : ", total)
	for _, d := range docs {
		b, err := record.MarshalExtJSON(d)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s \n\n", b)
	}
	return nil
}

func (s *Service) printCount(ctx context.Context, w io.Writer) error {
	n, err := s.Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	fmt.Fprintln(w, "Collection count : ", n)
	return nil
}
