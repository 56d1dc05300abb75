package config

import "context"

// Model is the unified, format-agnostic representation of a workspace
// declaration. Archives and Tools preserve declaration order so that the
// materialized output is stable across runs.
type Model struct {
	Archives []*Archive
	Tools    []*Tool
	Settings *Settings
}

// Archive is a pinned, checksummed third-party dependency. Everything needed
// to materialize it is declared up front; nothing about it depends on the
// host environment.
type Archive struct {
	Name string

	// URLs are tried in declared order. Mirror-before-canonical is a policy
	// choice made by whoever writes the workspace file, not by this tool.
	URLs []string

	// SHA256 and BLAKE3 are optional hex digests of the downloaded bytes.
	// When both are present, both must match.
	SHA256 string
	BLAKE3 string

	// StripPrefix is a leading path component removed from every entry
	// during extraction.
	StripPrefix string

	// Patches are applied in declared order after extraction.
	Patches []*Patch

	// BuildFile is an optional path to a checked-in build file that is
	// installed as the extracted tree's manifest.
	BuildFile string
}

// Patch is a unified-diff file together with its apply arguments
// (currently only the -pN strip level is honored).
type Patch struct {
	File string
	Args []string
}

// Tool is a pinned build tool binary, addressed by version rather than by an
// explicit URL list. The download URL is derived from URLTemplate with the
// version substituted in.
type Tool struct {
	Name        string
	Version     string
	URLTemplate string
	SHA256      string

	// Binary is the path of the executable inside the extracted archive,
	// exposed by the generated manifest as a single file reference.
	Binary string
}

// Settings holds the workspace-level knobs for host probing and output
// placement.
type Settings struct {
	// PythonVar names the environment variable that must point at the
	// interpreter used for all probes.
	PythonVar string

	// OutputDir is where repositories and extracted archives are
	// materialized. Relative paths are resolved against the process
	// working directory.
	OutputDir string
}

// DefaultSettings returns the settings used when a workspace file declares
// no settings block.
func DefaultSettings() *Settings {
	return &Settings{
		PythonVar: "PYTHON_BIN_PATH",
		OutputDir: "third_party",
	}
}

// Loader is the interface for a format-specific workspace loader.
type Loader interface {
	// Load reads a workspace declaration from the given paths and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
