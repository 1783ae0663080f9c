package datalake

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSFetcher reads table blobs from a Google Cloud Storage bucket, for
// deployments that mirror the lake there instead of Azure.
type GCSFetcher struct {
	client *storage.Client
	bucket string
}

// NewGCSFetcher creates a fetcher for one bucket. With anonymous set, the
// client skips credential lookup and can only read public objects.
func NewGCSFetcher(ctx context.Context, bucket string, anonymous bool) (*GCSFetcher, error) {
	var opts []option.ClientOption
	if anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSFetcher: create storage client: %w", err)
	}
	return &GCSFetcher{client: client, bucket: bucket}, nil
}

// FetchBlob implements BlobFetcher.
func (f *GCSFetcher) FetchBlob(ctx context.Context, filename string) ([]byte, error) {
	r, err := f.client.Bucket(f.bucket).Object(filename).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchBlob: open object reader for %s: %w", filename, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("FetchBlob: read object %s: %w", filename, err)
	}
	return data, nil
}

// Close releases the underlying storage client.
func (f *GCSFetcher) Close() error {
	return f.client.Close()
}

var _ BlobFetcher = (*GCSFetcher)(nil)
