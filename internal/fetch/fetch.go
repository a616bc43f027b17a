// Package fetch downloads remote documents into a scratch directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"doc-gpt/internal/helper"
)

// Fetcher downloads documents over HTTP into a scratch directory.
type Fetcher struct {
	client   *http.Client
	dir      string
	maxBytes int64
}

// New builds a fetcher writing into dir. Downloads larger than maxBytes
// fail.
func New(dir string, maxBytes int64, timeout time.Duration) (*Fetcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		dir:      dir,
		maxBytes: maxBytes,
	}, nil
}

// Fetch downloads rawURL into the scratch directory and returns the
// local path plus a cleanup function removing the file.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("failed to fetch %s: status %d", rawURL, resp.StatusCode)
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return "", nil, err
	}
	name := id + "-" + SanitizeFileName(FileNameFromURL(rawURL))
	dst := filepath.Join(f.dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return "", nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	if n > f.maxBytes {
		os.Remove(dst)
		return "", nil, fmt.Errorf("failed to download %s: larger than %d bytes", rawURL, f.maxBytes)
	}

	cleanup := func() {
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", dst).Msg("failed to remove scratch file")
		}
	}
	return dst, cleanup, nil
}

// FileNameFromURL returns the last path element of rawURL, or
// "document" when the URL has none.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}

// SanitizeFileName replaces characters outside [A-Za-z0-9._-] so the
// name is safe as a local file name.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
