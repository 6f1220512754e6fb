package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubSource lets tests point the downloader at a local server.
type stubSource struct {
	url string
}

func (s stubSource) DiffURL() string    { return s.url }
func (s stubSource) Identifier() string { return "stub" }

func TestDownloader_Patch(t *testing.T) {
	const diff = "diff --git a/main.rs b/main.rs\n--- a/main.rs\n+++ b/main.rs\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/widget/pull/42.diff" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(diff))
	}))
	defer srv.Close()

	d := NewDownloader()
	got, err := d.Patch(context.Background(), stubSource{url: srv.URL + "/acme/widget/pull/42.diff"})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if got != diff {
		t.Errorf("Patch() = %q, want %q", got, diff)
	}
}

func TestDownloader_Patch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader()
	_, err := d.Patch(context.Background(), stubSource{url: srv.URL + "/missing.diff"})

	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("Patch() error = %v, want *DownloadError", err)
	}
	if de.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", de.StatusCode)
	}
}

func TestDownloader_Patch_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the port refuses connections

	d := NewDownloader()
	_, err := d.Patch(context.Background(), stubSource{url: srv.URL + "/x.diff"})
	if err == nil {
		t.Fatal("Patch() error = nil, want network error")
	}
	var de *DownloadError
	if errors.As(err, &de) {
		t.Errorf("network failure should not be a *DownloadError, got %v", err)
	}
}
