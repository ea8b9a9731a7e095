package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/clicky/task"
	depshttp "github.com/flanksource/ghidra-install/pkg/http"
	"github.com/flanksource/ghidra-install/pkg/utils"
)

// ErrDownloadFailed wraps every transport error and non-200 response
var ErrDownloadFailed = errors.New("download failed")

// maxPageSize bounds how much of a download page is read into memory
const maxPageSize = 16 << 20

// DownloadOption is a functional option for configuring downloads
type DownloadOption func(*downloadConfig)

type downloadConfig struct {
	skipProgress bool
	client       *http.Client
}

// WithoutProgress disables progress tracking on the task
func WithoutProgress() DownloadOption {
	return func(c *downloadConfig) {
		c.skipProgress = true
	}
}

// WithHTTPClient replaces the default client, used by tests
func WithHTTPClient(client *http.Client) DownloadOption {
	return func(c *downloadConfig) {
		c.client = client
	}
}

// ProgressReader wraps an io.Reader and reports progress
type ProgressReader struct {
	io.Reader
	total      int64
	current    int64
	task       *task.Task
	lastUpdate time.Time
	startTime  time.Time
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.current += int64(n)

	// At most one update per 100ms
	now := time.Now()
	if now.Sub(pr.lastUpdate) >= 100*time.Millisecond {
		if pr.total > 0 {
			pr.task.SetProgress(int(pr.current), int(pr.total))

			elapsed := now.Sub(pr.startTime).Seconds()
			if elapsed > 0 {
				speed := float64(pr.current) / elapsed
				remaining := pr.total - pr.current
				eta := time.Duration(float64(remaining) / speed * float64(time.Second))

				pr.task.SetDescription(fmt.Sprintf("%s/%s (%.1f MB/s, ETA: %s)",
					utils.FormatBytes(pr.current),
					utils.FormatBytes(pr.total),
					speed/1024/1024,
					formatDuration(eta)))
			}
		} else {
			pr.task.SetDescription(fmt.Sprintf("Downloaded %s", utils.FormatBytes(pr.current)))
		}
		pr.lastUpdate = now
	}

	return n, err
}

// Download fetches url into dest. The body is written to dest.tmp and renamed
// once complete, so dest never holds a partial file.
func Download(ctx context.Context, url, dest string, t *task.Task, opts ...DownloadOption) error {
	config := &downloadConfig{}
	for _, opt := range opts {
		opt(config)
	}
	client := config.client
	if client == nil {
		// archives are hundreds of MB, rely on ctx rather than a client timeout
		client = depshttp.GetHttpClient(depshttp.WithTimeout(0), depshttp.WithTask(t))
	}

	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	tempFile := dest + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tempFile, err)
	}
	defer func() {
		out.Close()
		if _, err := os.Stat(tempFile); err == nil {
			os.Remove(tempFile)
		}
	}()

	if t != nil {
		utils.LogDownloadStart(t, url, dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid url %s: %v", ErrDownloadFailed, url, err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDownloadFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %s for %s", ErrDownloadFailed, resp.Status, url)
	}

	if t != nil && resp.ContentLength > 0 {
		t.SetDescription(fmt.Sprintf("Downloading (%s)", utils.FormatBytes(resp.ContentLength)))
	}

	var reader io.Reader = resp.Body
	if t != nil && !config.skipProgress {
		reader = &ProgressReader{
			Reader:     resp.Body,
			total:      resp.ContentLength,
			task:       t,
			startTime:  time.Now(),
			lastUpdate: time.Now(),
		}
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrDownloadFailed, url, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fmt.Errorf("%w: %s truncated after %s of %s", ErrDownloadFailed, url,
			utils.FormatBytes(written), utils.FormatBytes(resp.ContentLength))
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tempFile, err)
	}
	if err := os.Rename(tempFile, dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	if t != nil {
		t.Infof("Downloaded %s (%s in %s)", filepath.Base(dest), utils.FormatBytes(written), formatDuration(time.Since(start)))
	}
	return nil
}

// FetchPage GETs url and returns the body, used for scraping download pages
func FetchPage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = depshttp.GetHttpClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return body, nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
