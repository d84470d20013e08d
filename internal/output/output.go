// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes URL lists and text results, and downloads the
// referenced dataset files into a local directory.
package output

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/tapfetch/internal/httputil"
	"github.com/pdiddy/tapfetch/pkg/types"
)

// Sentinel is written to the output file when a run finds no resources.
const Sentinel = "No files matching parameters"

// placeholderName names a download whose URL has no usable path segment.
const placeholderName = "archive file "

// WriteURLList writes each URL followed by a comma, with no other
// separator. The trailing comma is part of the format.
func WriteURLList(urls []string, path string) error {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte(',')
	}
	return WriteText(b.String(), path)
}

// WriteText replaces the file at path with content.
func WriteText(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Download fetches url and returns the full body. Any failure, including a
// non-200 status, is returned to the caller.
func Download(ctx context.Context, client *http.Client, url string, cfg types.HTTPConfig) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// DeriveFilename returns the last path segment of url. A trailing slash
// selects the segment before it; when neither is usable the placeholder
// name is returned. "." and ".." are never usable.
func DeriveFilename(url string) string {
	parts := strings.Split(url, "/")
	name := parts[len(parts)-1]
	if name == "" && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	if name == "" || name == "." || name == ".." {
		return placeholderName
	}
	return name
}

// SaveFile writes data to dir/name through a temporary file renamed into
// place, creating dir if needed. It returns the final path.
func SaveFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// FileResult is the outcome of downloading one URL.
type FileResult struct {
	URL  string
	Path string
	Err  error
}

// BatchResult holds the outcome of a download run.
type BatchResult struct {
	Downloaded int
	Failed     int
	Files      []FileResult
}

// Total returns the number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DownloadAll downloads each URL in order into cfg.DownloadDir, naming files
// with DeriveFilename. A failing URL is reported to w and skipped; the batch
// always runs to the end.
func DownloadAll(ctx context.Context, client *http.Client, urls []string, httpCfg types.HTTPConfig, cfg types.OutputConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, raw := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}

		u := strings.TrimRight(raw, ",")
		fr := FileResult{URL: u}

		data, err := Download(ctx, client, u, httpCfg)
		if err == nil {
			fr.Path, err = SaveFile(cfg.DownloadDir, DeriveFilename(u), data)
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			fr.Err = err
			result.Failed++
		} else {
			fmt.Fprintf(w, "downloaded: %s -> %s\n", u, fr.Path)
			result.Downloaded++
		}
		result.Files = append(result.Files, fr)
	}
	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	return result
}
