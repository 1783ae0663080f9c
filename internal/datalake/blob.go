package datalake

import (
	"context"
)

// BlobFetcher downloads one raw table blob from object storage.
// Implementations classify failures with the source package's error types so
// the accessor can report lake unavailability correctly.
type BlobFetcher interface {
	// FetchBlob returns the raw bytes of the named file.
	FetchBlob(ctx context.Context, filename string) ([]byte, error)
}
