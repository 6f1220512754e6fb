// Package fetch downloads raw patches and existing review discussion from
// code-hosting services.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patchkit/patchctl/internal/resolve"
)

// DownloadError means the hosting service did not hand over the patch. It is
// distinct from an apply failure: nothing has been mutated yet.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: unexpected status %d", e.URL, e.StatusCode)
}

// Downloader fetches raw unified-diff text.
type Downloader struct {
	Client *http.Client
}

// NewDownloader returns a Downloader with a bounded request timeout.
func NewDownloader() *Downloader {
	return &Downloader{Client: &http.Client{Timeout: 60 * time.Second}}
}

// Patch downloads the raw diff for a patch source.
func (d *Downloader) Patch(ctx context.Context, src resolve.PatchSource) (string, error) {
	url := src.DiffURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading patch from %s: %w", url, err)
	}
	return string(body), nil
}
