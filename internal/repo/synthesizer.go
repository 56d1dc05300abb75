// Package repo materializes synthesized external repositories: symlink trees
// over host-installed paths plus a generated build manifest.
//
// Linking never copies. A synthesized repository observes the host path's
// contents as of synthesis time; the host environment is assumed stable for
// the duration of one setup run, and later mutation of the target is
// undefined behavior.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/depforge/internal/ctxlog"
)

// manifestFileName is the generated manifest written at every repository root.
const manifestFileName = "BUILD.bazel"

// Link maps an external target path to a name local to the repository root.
type Link struct {
	// Target is the absolute host path being referenced.
	Target string
	// LocalName is the link's name inside the repository.
	LocalName string
}

// ExternalRepository is a named virtual package: its private root on disk,
// the links it contains, and the manifest body that was written. Instances
// are immutable once returned.
type ExternalRepository struct {
	Name     string
	Root     string
	Links    []Link
	Manifest string
}

// Synthesizer creates external repositories under a fixed output root.
type Synthesizer struct {
	root string
}

// NewSynthesizer returns a Synthesizer that materializes repositories under
// root, creating it on first use.
func NewSynthesizer(root string) *Synthesizer {
	return &Synthesizer{root: root}
}

// Synthesize materializes one repository. Re-running with the same inputs is
// safe: links are replaced in place and the manifest is rewritten with
// byte-identical content, so repeated setup runs do not drift.
func (s *Synthesizer) Synthesize(ctx context.Context, name string, links []Link, manifestBody string) (*ExternalRepository, error) {
	logger := ctxlog.FromContext(ctx)

	repoRoot := filepath.Join(s.root, name)
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		return nil, fmt.Errorf("repository %q: failed to create root: %w", name, err)
	}

	for _, link := range links {
		dest := filepath.Join(repoRoot, link.LocalName)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("repository %q: failed to create link parent for %s: %w", name, link.LocalName, err)
		}
		// Remove any previous link so a re-run converges instead of
		// failing with EEXIST.
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("repository %q: failed to replace link %s: %w", name, link.LocalName, err)
		}
		if err := os.Symlink(link.Target, dest); err != nil {
			return nil, fmt.Errorf("repository %q: failed to link %s -> %s: %w", name, link.LocalName, link.Target, err)
		}
		logger.Debug("Linked external path.", "repository", name, "local", link.LocalName, "target", link.Target)
	}

	if err := os.WriteFile(filepath.Join(repoRoot, manifestFileName), []byte(manifestBody), 0o644); err != nil {
		return nil, fmt.Errorf("repository %q: failed to write manifest: %w", name, err)
	}
	if err := s.writeWorkspaceMarker(repoRoot, name); err != nil {
		return nil, err
	}
	logger.Debug("Repository synthesized.", "repository", name, "links", len(links))

	return &ExternalRepository{
		Name:     name,
		Root:     repoRoot,
		Links:    links,
		Manifest: manifestBody,
	}, nil
}

// writeWorkspaceMarker writes the marker file that lets the outer build
// graph treat the directory as a repository root.
func (s *Synthesizer) writeWorkspaceMarker(repoRoot, name string) error {
	body := fmt.Sprintf("workspace(name = %q)\n", name)
	if err := os.WriteFile(filepath.Join(repoRoot, "WORKSPACE"), []byte(body), 0o644); err != nil {
		return fmt.Errorf("repository %q: failed to write workspace marker: %w", name, err)
	}
	return nil
}

// Root returns the output root repositories are materialized under.
func (s *Synthesizer) Root() string {
	return s.root
}
