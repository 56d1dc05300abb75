package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/depforge/internal/ctxlog"
)

// Spec describes one fact to discover: which tool to invoke, with which
// arguments, and how to interpret its output. The parse rule is fixed: the
// last non-blank line of standard output, trimmed, is the discovered path.
type Spec struct {
	// Fact is the unique name of the discovered value. Specs are defined
	// one per fact; the memoization cache is keyed by this name.
	Fact string

	// Command is the tool to invoke. Left empty when EnvCommand is set.
	Command string

	// EnvCommand names an environment variable whose value is the tool to
	// invoke (e.g. the interpreter-location variable). Absence of the
	// variable is a configuration error raised before any process spawns.
	EnvCommand string

	// Args are passed to the tool verbatim.
	Args []string
}

// Result is the outcome of running a Spec: the resolved path plus the exit
// status and captured error stream of the probing process.
type Result struct {
	Fact     string
	Path     string
	ExitCode int
	Stderr   string
}

// SolibSpec describes the shared-library special case: a secondary
// invocation discovers the framework's library directory, and the platform
// shared-library file inside it must actually exist.
type SolibSpec struct {
	// Dir is the probe for the library directory.
	Dir Spec

	// Library is the unversioned shared object name, e.g.
	// "libtensorflow_framework.so".
	Library string

	// Version is the major version suffix appended to Library.
	Version int
}

// Prober runs probes and caches their results for the remainder of one setup
// invocation. The cache is write-once per fact; setup is single-threaded by
// design, so no locking is needed.
type Prober struct {
	runner Runner
	cache  map[string]*Result
}

// NewProber returns a Prober backed by the given runner. Pass ExecRunner{}
// for production use.
func NewProber(runner Runner) *Prober {
	return &Prober{
		runner: runner,
		cache:  make(map[string]*Result),
	}
}

// Probe resolves one fact. Repeat calls for the same fact return the cached
// result without re-invoking the tool.
func (p *Prober) Probe(ctx context.Context, spec Spec) (*Result, error) {
	if cached, ok := p.cache[spec.Fact]; ok {
		return cached, nil
	}
	logger := ctxlog.FromContext(ctx)

	tool, err := p.resolveTool(spec)
	if err != nil {
		return nil, err
	}

	logger.Debug("Probing host environment.", "fact", spec.Fact, "tool", tool)
	stdout, stderr, exitCode, err := p.runner.Run(ctx, tool, spec.Args...)
	if err != nil {
		return nil, &ProbeError{Fact: spec.Fact, Tool: tool, Stderr: stderr, Reason: err.Error()}
	}
	if exitCode != 0 {
		return nil, &ProbeError{
			Fact:     spec.Fact,
			Tool:     tool,
			ExitCode: exitCode,
			Stderr:   stderr,
			Reason:   fmt.Sprintf("exited with status %d", exitCode),
		}
	}

	path, ok := lastLine(stdout)
	if !ok {
		return nil, &ProbeError{Fact: spec.Fact, Tool: tool, Stderr: stderr, Reason: "no path on standard output"}
	}

	result := &Result{Fact: spec.Fact, Path: path, ExitCode: exitCode, Stderr: stderr}
	p.cache[spec.Fact] = result
	logger.Debug("Fact resolved.", "fact", spec.Fact, "path", path)
	return result, nil
}

// SharedLibrary resolves the platform shared-library fact. On success the
// returned path is the versioned library file, which is verified to exist on
// disk — header-directory probes are trusted, but a missing runtime artifact
// must fail here rather than at link time.
func (p *Prober) SharedLibrary(ctx context.Context, spec SolibSpec) (*Result, error) {
	dir, err := p.Probe(ctx, spec.Dir)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s.%d", spec.Library, spec.Version)
	libPath := filepath.Join(dir.Path, name)
	if _, err := os.Stat(libPath); err != nil {
		return nil, &ProbeError{
			Fact:   spec.Dir.Fact,
			Tool:   name,
			Reason: fmt.Sprintf("shared library %s not found under %s: %v", name, dir.Path, err),
		}
	}
	return &Result{Fact: spec.Dir.Fact, Path: libPath}, nil
}

// resolveTool determines the binary to invoke, consulting the environment
// when the spec requires it. This happens before any process is spawned.
func (p *Prober) resolveTool(spec Spec) (string, error) {
	if spec.EnvCommand == "" {
		return spec.Command, nil
	}
	tool, ok := os.LookupEnv(spec.EnvCommand)
	if !ok || strings.TrimSpace(tool) == "" {
		return "", &ConfigurationError{Var: spec.EnvCommand, Fact: spec.Fact}
	}
	return tool, nil
}

// lastLine returns the last non-blank line of s, trimmed of surrounding
// whitespace.
func lastLine(s string) (string, bool) {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}
