// Package framework registers the repositories derived from an installed
// machine-learning framework: the header trees bundled inside its include
// directory, the aggregate include repository, and the framework's runtime
// shared library.
//
// All header repositories read the same probed include-path fact. The fact
// is declared per registration and resolved once through the prober's cache,
// so adding or reordering repositories here cannot cause a re-probe.
package framework

import (
	"fmt"
	"path/filepath"

	"github.com/vk/depforge/internal/graph"
	"github.com/vk/depforge/internal/manifest"
	"github.com/vk/depforge/internal/probe"
	"github.com/vk/depforge/internal/repo"
)

// Fact names for the framework's host-probed paths.
const (
	FactInclude = "framework_include"
	FactLib     = "framework_lib"
)

// Repository names registered by this package.
const (
	RepoEigen     = "eigen_includes"
	RepoAbsl      = "absl_includes"
	RepoZlib      = "zlib_includes"
	RepoProtobuf  = "protobuf_includes"
	RepoRe2       = "re2_includes"
	RepoAggregate = "tensorflow_includes"
	RepoSolib     = "tensorflow_solib"
)

// solibName is the unversioned runtime library; the major version suffix is
// fixed by the framework's ABI.
const (
	solibName    = "libtensorflow_framework.so"
	solibVersion = 2
)

// includeSpec is the shared framework-include-path fact: ask the installed
// framework where its bundled headers live.
func includeSpec(pythonVar string) probe.Spec {
	return probe.Spec{
		Fact:       FactInclude,
		EnvCommand: pythonVar,
		Args:       []string{"-c", "import tensorflow as tf; print(tf.sysconfig.get_include())"},
	}
}

// libSpec is the secondary invocation used for shared-library discovery.
func libSpec(pythonVar string) probe.Spec {
	return probe.Spec{
		Fact:       FactLib,
		EnvCommand: pythonVar,
		Args:       []string{"-c", "import tensorflow as tf; print(tf.sysconfig.get_lib())"},
	}
}

// Headers registers the header repositories derived from the framework
// include tree: one repository per bundled third-party header set, plus the
// aggregate repository that depends on all of them.
type Headers struct {
	// PythonVar names the environment variable pointing at the probing
	// interpreter.
	PythonVar string
}

// Register adds the five derived header repositories and the aggregate to
// the builder, aggregate last so its declared dependencies are registered
// before it.
func (m *Headers) Register(b *graph.Builder) error {
	include := includeSpec(m.PythonVar)

	derived := []struct {
		name  string
		globs []string
	}{
		// Eigen ships extensionless headers; glob the whole subtrees.
		{RepoEigen, []string{"Eigen/**", "unsupported/**"}},
		{RepoAbsl, []string{"absl/**/*.h", "absl/**/*.inc"}},
		{RepoZlib, []string{"zlib.h", "zconf.h"}},
		{RepoProtobuf, []string{"google/protobuf/**/*.h", "google/protobuf/**/*.inc"}},
		{RepoRe2, []string{"re2/**/*.h"}},
	}

	aggregateDeps := make([]string, 0, len(derived))
	for _, d := range derived {
		if err := b.AddRepository(headerRepository(d.name, include, d.globs, nil)); err != nil {
			return err
		}
		aggregateDeps = append(aggregateDeps, d.name)
	}

	return b.AddRepository(aggregateRepository(include, aggregateDeps))
}

// Solib registers the framework's runtime shared library as a linkable
// repository. Registered after the interpreter repositories because its
// manifest depends on them.
type Solib struct {
	PythonVar string
}

// Register adds the shared-library repository to the builder.
func (m *Solib) Register(b *graph.Builder) error {
	lib := libSpec(m.PythonVar)

	return b.AddRepository(&graph.ProbeRepository{
		Name: RepoSolib,
		Solib: &probe.SolibSpec{
			Dir:     lib,
			Library: solibName,
			Version: solibVersion,
		},
		Synthesize: func(facts map[string]string) ([]repo.Link, string, error) {
			libFile := facts[FactLib]
			body, err := manifest.Render(manifest.Doc{
				Libraries: []manifest.Library{{
					Name: RepoSolib,
					Srcs: []string{RepoSolib + "/" + filepath.Base(libFile)},
					// The runtime artifact is unusable downstream
					// without the interpreter and numerics headers.
					Deps: []string{"python_includes", "numpy_includes"},
				}},
			})
			if err != nil {
				return nil, "", err
			}
			links := []repo.Link{{Target: filepath.Dir(libFile), LocalName: RepoSolib}}
			return links, body, nil
		},
	})
}

// headerRepository builds a registration that links the shared include tree
// under the repository's own name and globs one header subtree out of it.
func headerRepository(name string, include probe.Spec, globs, deps []string) *graph.ProbeRepository {
	return &graph.ProbeRepository{
		Name:  name,
		Facts: []probe.Spec{include},
		Synthesize: func(facts map[string]string) ([]repo.Link, string, error) {
			root := facts[include.Fact]
			body, err := manifest.Render(manifest.Doc{
				Libraries: []manifest.Library{{
					Name:      name,
					HdrsGlobs: prefixGlobs(name, globs),
					Includes:  []string{name},
					Deps:      deps,
				}},
			})
			if err != nil {
				return nil, "", err
			}
			return []repo.Link{{Target: root, LocalName: name}}, body, nil
		},
	}
}

// aggregateRepository globs every header under the include tree and
// additionally exposes the schema-definition files found anywhere under it
// as a file group, for the code-generation step outside this core.
func aggregateRepository(include probe.Spec, deps []string) *graph.ProbeRepository {
	name := RepoAggregate
	return &graph.ProbeRepository{
		Name:  name,
		Facts: []probe.Spec{include},
		Synthesize: func(facts map[string]string) ([]repo.Link, string, error) {
			root := facts[include.Fact]
			body, err := manifest.Render(manifest.Doc{
				Libraries: []manifest.Library{{
					Name:      name,
					HdrsGlobs: prefixGlobs(name, []string{"**/*.h", "**/*.inc"}),
					Includes:  []string{name},
					Deps:      deps,
				}},
				FileGroups: []manifest.FileGroup{{
					Name:      "protos",
					SrcsGlobs: prefixGlobs(name, []string{"**/*.proto"}),
				}},
			})
			if err != nil {
				return nil, "", err
			}
			return []repo.Link{{Target: root, LocalName: name}}, body, nil
		},
	}
}

// prefixGlobs scopes glob patterns to the repository's local link name.
func prefixGlobs(localName string, globs []string) []string {
	prefixed := make([]string, 0, len(globs))
	for _, g := range globs {
		prefixed = append(prefixed, fmt.Sprintf("%s/%s", localName, g))
	}
	return prefixed
}
