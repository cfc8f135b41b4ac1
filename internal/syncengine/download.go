package syncengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cutroom/internal/services"
)

// Downloader fetches remote audio into a local workspace file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// HTTPDownloader fetches media over plain HTTP(S).
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader builds a Downloader with a per-request timeout.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{client: &http.Client{Timeout: timeout}}
}

// Download streams the response body to destPath.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sync-engine", "download",
			fmt.Sprintf("build request for %s", url), err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sync-engine", "download",
			fmt.Sprintf("fetch %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "sync-engine", "download",
			fmt.Sprintf("fetch %s: %s", url, resp.Status), nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return services.Wrap(services.ErrTransient, "sync-engine", "download",
			fmt.Sprintf("write %s", destPath), err)
	}
	return nil
}
