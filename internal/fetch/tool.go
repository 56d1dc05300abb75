package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
	"github.com/vk/depforge/internal/manifest"
)

// FetchTool materializes a pinned build tool binary under <root>/<name>.
// Unlike a regular archive, a tool is addressed by version: its download URL
// is derived from the declared template. The checksum and extraction
// contract is the same, and the generated manifest exposes the extracted
// binary as a single file reference.
func (f *Fetcher) FetchTool(ctx context.Context, spec *config.Tool) error {
	logger := ctxlog.FromContext(ctx).With("tool", spec.Name)

	url := strings.ReplaceAll(spec.URLTemplate, "{version}", spec.Version)
	archivePath, sourceURL, err := f.download(ctx, spec.Name, []string{url})
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)
	logger.Debug("Tool archive downloaded.", "url", sourceURL, "version", spec.Version)

	if err := verifyDigests(archivePath, spec.Name, spec.SHA256, ""); err != nil {
		return err
	}

	dest := filepath.Join(f.root, spec.Name)
	if err := extract(archivePath, sourceURL, dest, ""); err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("tool %q: extraction failed: %w", spec.Name, err)
	}

	body, err := manifest.Render(manifest.Doc{
		FileGroups: []manifest.FileGroup{{
			Name: spec.Name,
			Srcs: []string{spec.Binary},
		}},
		// A stable name so consumers do not hardcode the archive layout.
		Aliases: []manifest.Alias{{Name: "bin", Actual: ":" + spec.Name}},
	})
	if err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("tool %q: %w", spec.Name, err)
	}
	if err := os.WriteFile(filepath.Join(dest, "BUILD.bazel"), []byte(body), 0o644); err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("tool %q: failed to write manifest: %w", spec.Name, err)
	}
	logger.Debug("Tool materialized.", "dest", dest, "binary", spec.Binary)
	return nil
}
