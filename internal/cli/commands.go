package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/internal/record"
	"github.com/devreg/devreg/internal/record/service"
	"github.com/devreg/devreg/internal/storage"
	"github.com/spf13/cobra"
)

type demoOptions struct {
	insert       bool
	updateSerial string
	region       string
	querySerial  string
}

func (d *demoOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&d.insert, "insert", false, "insert the sample record before updating")
	f.StringVar(&d.updateSerial, "update-serial", "23", "serial number whose Region is updated")
	f.StringVar(&d.region, "region", "2", "Region value written by the update")
	f.StringVar(&d.querySerial, "query-serial", "24", "serial number listed at the end")
}

func runDemo(cmd *cobra.Command, o *options, d *demoOptions) error {
	if o.output != "text" {
		return fmt.Errorf("demo writes console text only; -o %s is not supported", o.output)
	}
	a, err := o.connect(cmd.Context())
	if err != nil {
		return err
	}
	return a.Service.RunDemo(cmd.Context(), cmd.OutOrStdout(), service.DemoOptions{
		Insert:       d.insert,
		UpdateSerial: d.updateSerial,
		Region:       d.region,
		QuerySerial:  d.querySerial,
	})
}

func newDemoCommand(o *options) *cobra.Command {
	d := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the read/count/insert/update/query walkthrough",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, o, d)
		},
	}
	d.bind(cmd)
	return cmd
}

func newFindOneCommand(o *options) *cobra.Command {
	var serial string
	cmd := &cobra.Command{
		Use:   "find-one",
		Short: "Print the first record (optionally with a serial number)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := a.Service.FindOne(cmd.Context(), record.BySerial(serial))
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), o.output, doc)
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "match SerialNumber")
	return cmd
}

func newCountCommand(o *options) *cobra.Command {
	var serial string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count records (optionally with a serial number)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			n, err := a.Service.Count(cmd.Context(), record.BySerial(serial))
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), o.output, map[string]int64{"count": n}, n)
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "match SerialNumber")
	return cmd
}

func newInsertCommand(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert the sample record, or one read from --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc record.Document
			var err error
			if file == "" {
				doc, err = record.Sample()
			} else {
				var data []byte
				data, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				doc, err = record.Parse(data)
			}
			if err != nil {
				return err
			}
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			stored, err := a.Service.Insert(cmd.Context(), doc)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), o.output, stored)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Extended JSON document to insert")
	return cmd
}

func newUpdateCommand(o *options) *cobra.Command {
	var serial, region string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set Region on every record with the given serial number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Service.UpdateMany(cmd.Context(), record.BySerial(serial), record.SetRegion(region))
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), o.output, res,
				fmt.Sprintf("matched %d, modified %d", res.Matched, res.Modified))
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "match SerialNumber")
	cmd.Flags().StringVar(&region, "region", "", "new Region value")
	_ = cmd.MarkFlagRequired("serial")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newFindCommand(o *options) *cobra.Command {
	var serial string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Print every record (optionally with a serial number)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := a.Service.Find(cmd.Context(), record.BySerial(serial))
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), o.output, docs)
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "match SerialNumber")
	return cmd
}

// objectStore is the MinIO surface export and import use.
type objectStore interface {
	storage.Uploader
	storage.Downloader
	Bucket() string
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// openStore connects to the export bucket. Tests replace it.
var openStore = func(ctx context.Context, cfg config.MinIOConfig) (objectStore, error) {
	return storage.NewMinIOStorage(ctx, cfg)
}

func newExportCommand(o *options) *cobra.Command {
	var serial string
	var expires time.Duration
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload matching records to MinIO as an Extended JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), o.cfg.MinIO)
			if err != nil {
				return err
			}
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := a.Service.Find(cmd.Context(), record.BySerial(serial))
			if err != nil {
				return err
			}
			key := storage.ExportKey(time.Now())
			if err := storage.ExportRecords(cmd.Context(), store, key, docs); err != nil {
				return err
			}
			url, err := store.GetPresignedURL(cmd.Context(), key, expires)
			if err != nil {
				return fmt.Errorf("presign %s: %w", key, err)
			}
			out := map[string]interface{}{"bucket": store.Bucket(), "key": key, "records": len(docs), "url": url}
			return printValue(cmd.OutOrStdout(), o.output, out,
				fmt.Sprintf("exported %d records to %s/%s\n%s", len(docs), store.Bucket(), key, url))
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "match SerialNumber")
	cmd.Flags().DurationVar(&expires, "url-expiry", time.Hour, "lifetime of the presigned download URL")
	return cmd
}

func newImportCommand(o *options) *cobra.Command {
	var newIDs bool
	cmd := &cobra.Command{
		Use:   "import KEY",
		Short: "Insert the records of an export object back into the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			store, err := openStore(cmd.Context(), o.cfg.MinIO)
			if err != nil {
				return err
			}
			docs, err := storage.ReadExport(cmd.Context(), store, key)
			if err != nil {
				return err
			}
			a, err := o.connect(cmd.Context())
			if err != nil {
				return err
			}
			for i, doc := range docs {
				if newIDs {
					doc = record.WithoutID(doc)
				}
				if _, err := a.Service.Insert(cmd.Context(), doc); err != nil {
					return fmt.Errorf("record %d of %s: %w", i, key, err)
				}
			}
			out := map[string]interface{}{"bucket": store.Bucket(), "key": key, "records": len(docs)}
			return printValue(cmd.OutOrStdout(), o.output, out,
				fmt.Sprintf("imported %d records from %s/%s", len(docs), store.Bucket(), key))
		},
	}
	cmd.Flags().BoolVar(&newIDs, "new-ids", false, "drop exported _id values so the collection assigns fresh ones")
	return cmd
}
