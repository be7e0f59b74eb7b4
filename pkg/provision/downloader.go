package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ProgressCallback is called with download progress updates.
type ProgressCallback func(downloaded, total int64)

// DownloadOptions configures a download.
type DownloadOptions struct {
	URL        string
	DestPath   string
	SHA256     string // Expected checksum (optional)
	OnProgress ProgressCallback
}

// Fetcher downloads artifacts, allowing for testing.
type Fetcher interface {
	Download(ctx context.Context, opts DownloadOptions) error
}

// Downloader fetches artifacts over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader. A nil client uses one without a timeout,
// since JDK archives are large.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{client: client}
}

// Download fetches opts.URL into opts.DestPath. The body is written to a
// ".downloading" file and renamed only after the checksum (if any) matches.
func (d *Downloader) Download(ctx context.Context, opts DownloadOptions) error {
	if err := os.MkdirAll(filepath.Dir(opts.DestPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmpPath := opts.DestPath + ".downloading"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: HTTP %d", ErrNetwork, opts.URL, resp.StatusCode)
	}

	reader := &progressReader{
		reader:     resp.Body,
		total:      resp.ContentLength,
		onProgress: opts.OnProgress,
	}
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hash), reader); err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrNetwork, opts.URL, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if want := strings.ToLower(strings.TrimSpace(opts.SHA256)); want != "" {
		if got := hex.EncodeToString(hash.Sum(nil)); got != want {
			return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, want, got)
		}
	}

	if err := os.Rename(tmpPath, opts.DestPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	renamed = true

	return nil
}

// progressReader wraps a reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	onProgress ProgressCallback
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.downloaded += int64(n)
	if r.onProgress != nil {
		r.onProgress(r.downloaded, r.total)
	}
	return n, err
}
