package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/devreg/devreg/internal/record"
	"github.com/google/uuid"
)

// Uploader is the part of MinIOStorage that exports need.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// Downloader is the part of MinIOStorage that imports need.
type Downloader interface {
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExportKey returns a fresh object key of the form exports/<UTC timestamp>-<uuid>.json.
func ExportKey(now time.Time) string {
	return fmt.Sprintf("exports/%s-%s.json", now.UTC().Format("20060102T150405Z"), uuid.NewString())
}

// ExportRecords writes docs as an Extended JSON array under key.
func ExportRecords(ctx context.Context, up Uploader, key string, docs []record.Document) error {
	body, err := record.MarshalExtJSONArray(docs)
	if err != nil {
		return err
	}
	if err := up.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ReadExport loads an array written by ExportRecords.
func ReadExport(ctx context.Context, dl Downloader, key string) ([]record.Document, error) {
	rc, err := dl.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	docs, err := record.ParseArray(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return docs, nil
}
