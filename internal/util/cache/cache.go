// Package cache downloads remote reference files, such as the Unicode
// emoji-test.txt, and keeps them on disk for later runs.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/emojiart/internal/util/http"
)

// Options configures caching behaviour.
type Options struct {
	// Dir is the directory where files are cached.
	// If empty, defaults to ~/.cache/emojiart/reference
	Dir string

	// Filename overrides the cached file name.
	// If empty, a hash of the URL plus its extension is used.
	Filename string

	// Refresh downloads the file even if a cached copy exists.
	Refresh bool

	// Fetch configures the download.
	Fetch httputil.FetchOptions
}

// DefaultDir returns the default cache directory path.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "emojiart", "reference"), nil
	}
	return filepath.Join(cacheDir, "emojiart", "reference"), nil
}

// filenameFor creates a deterministic filename from a URL.
func filenameFor(url string) string {
	hash := sha256.Sum256([]byte(url))
	name := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 || strings.ContainsRune(ext, '/') {
		ext = ".txt"
	}
	return name + ext
}

// Download returns the local path of url's content, fetching it only when
// no cached copy exists or opts.Refresh is set. The file is written through
// a temporary name so an interrupted download never leaves a partial copy.
func Download(ctx context.Context, url string, opts Options) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	filename := opts.Filename
	if filename == "" {
		filename = filenameFor(url)
	}
	cached := filepath.Join(dir, filename)

	if !opts.Refresh {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}

	tmp, err := os.CreateTemp(dir, filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store cache file: %w", err)
	}
	return cached, nil
}
