package datalake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// azureAPIVersion is the storage service version sent with every request.
const azureAPIVersion = "2020-04-08"

// AzureFetcher reads table blobs over plain HTTPS from an Azure storage
// container, optionally authorized by a SAS token appended to the URL.
type AzureFetcher struct {
	account    string
	container  string
	sasToken   string
	httpClient *http.Client
}

// AzureOption configures an AzureFetcher.
type AzureOption func(*AzureFetcher)

// WithAzureHTTPClient replaces the underlying HTTP client (for testing).
func WithAzureHTTPClient(hc *http.Client) AzureOption {
	return func(f *AzureFetcher) { f.httpClient = hc }
}

// NewAzureFetcher creates a fetcher for one storage account and container.
// sasToken may be empty for public containers.
func NewAzureFetcher(account, container, sasToken string, opts ...AzureOption) *AzureFetcher {
	f := &AzureFetcher{
		account:    account,
		container:  container,
		sasToken:   sasToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// BlobURL returns the full request URL for a file.
func (f *AzureFetcher) BlobURL(filename string) string {
	u := fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", f.account, f.container, filename)
	if f.sasToken != "" {
		u += "?" + f.sasToken
	}
	return u
}

// FetchBlob implements BlobFetcher.
func (f *AzureFetcher) FetchBlob(ctx context.Context, filename string) ([]byte, error) {
	u := f.BlobURL(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("FetchBlob: building request for %s: %w", filename, err)
	}
	req.Header.Set("x-ms-version", azureAPIVersion)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &source.NetworkError{Op: "GET " + filename, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &source.AuthError{
			Resource: filename,
			Cause:    fmt.Errorf("blob storage returned status %d", resp.StatusCode),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &source.ServerError{Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, &source.ClientError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &source.NetworkError{Op: "GET " + filename, Cause: err}
	}
	return data, nil
}

var _ BlobFetcher = (*AzureFetcher)(nil)
