package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
)

// Fetcher downloads and materializes pinned archives under a fixed output
// root.
type Fetcher struct {
	root   string
	client *http.Client
}

// NewFetcher returns a Fetcher materializing archives under root. A nil
// client gets a default with a generous timeout; individual downloads still
// honor ctx cancellation from the caller.
func NewFetcher(root string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Fetcher{root: root, client: client}
}

// Fetch materializes one archive under <root>/<name>. Checksum verification
// happens before extraction; extraction and patching failures remove the
// destination directory.
func (f *Fetcher) Fetch(ctx context.Context, spec *config.Archive) error {
	logger := ctxlog.FromContext(ctx).With("archive", spec.Name)

	archivePath, sourceURL, err := f.download(ctx, spec.Name, spec.URLs)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)
	logger.Debug("Archive downloaded.", "url", sourceURL)

	if err := verifyDigests(archivePath, spec.Name, spec.SHA256, spec.BLAKE3); err != nil {
		return err
	}
	logger.Debug("Checksums verified.")

	dest := filepath.Join(f.root, spec.Name)
	if err := extract(archivePath, sourceURL, dest, spec.StripPrefix); err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("archive %q: extraction failed: %w", spec.Name, err)
	}
	logger.Debug("Archive extracted.", "dest", dest)

	if len(spec.Patches) > 0 {
		if err := applyPatches(ctx, spec.Name, dest, spec.Patches); err != nil {
			os.RemoveAll(dest)
			return err
		}
		logger.Debug("Patches applied.", "count", len(spec.Patches))
	}

	if spec.BuildFile != "" {
		if err := installBuildFile(spec.BuildFile, dest); err != nil {
			os.RemoveAll(dest)
			return fmt.Errorf("archive %q: %w", spec.Name, err)
		}
		logger.Debug("Build file installed.", "source", spec.BuildFile)
	}

	return nil
}

// download tries each URL in declared order and stores the first successful
// response body in a temporary file. It returns the file path and the URL
// that served it, so extraction can detect the archive format.
func (f *Fetcher) download(ctx context.Context, name string, urls []string) (string, string, error) {
	if len(urls) == 0 {
		return "", "", fmt.Errorf("archive %q: no download URLs declared", name)
	}
	logger := ctxlog.FromContext(ctx)

	var attemptErrs []error
	for _, url := range urls {
		path, err := f.downloadOne(ctx, name, url)
		if err == nil {
			return path, url, nil
		}
		// ctx errors will fail every remaining URL the same way; stop early.
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		logger.Warn("Download attempt failed, trying next URL.", "archive", name, "url", url, "error", err)
		attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", url, err))
	}
	return "", "", fmt.Errorf("archive %q: all download URLs failed: %w", name, errors.Join(attemptErrs...))
}

// downloadOne fetches a single URL into a fresh temporary file.
func (f *Fetcher) downloadOne(ctx context.Context, name, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "depforge-"+name+"-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// installBuildFile copies a checked-in build file override to the extracted
// tree's manifest location.
func installBuildFile(source, dest string) error {
	body, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read build file override: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "BUILD.bazel"), body, 0o644); err != nil {
		return fmt.Errorf("failed to install build file override: %w", err)
	}
	return nil
}
