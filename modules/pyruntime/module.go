// Package pyruntime registers the interpreter-provided repositories: the
// interpreter's own development headers and the numerics library's headers.
// Both are probed from the interpreter named by the workspace's
// environment-variable setting.
package pyruntime

import (
	"github.com/vk/depforge/internal/graph"
	"github.com/vk/depforge/internal/manifest"
	"github.com/vk/depforge/internal/probe"
	"github.com/vk/depforge/internal/repo"
)

// Fact names for the interpreter runtime paths.
const (
	FactPythonInclude = "python_include"
	FactNumpyInclude  = "numpy_include"
)

// Repository names registered by this package.
const (
	RepoPython = "python_includes"
	RepoNumpy  = "numpy_includes"
)

// Module registers both interpreter repositories.
type Module struct {
	// PythonVar names the environment variable pointing at the probing
	// interpreter.
	PythonVar string
}

// Register adds the interpreter-headers and numerics-headers repositories.
func (m *Module) Register(b *graph.Builder) error {
	python := probe.Spec{
		Fact:       FactPythonInclude,
		EnvCommand: m.PythonVar,
		Args:       []string{"-c", "import sysconfig; print(sysconfig.get_paths()['include'])"},
	}
	numpy := probe.Spec{
		Fact:       FactNumpyInclude,
		EnvCommand: m.PythonVar,
		Args:       []string{"-c", "import numpy; print(numpy.get_include())"},
	}

	if err := b.AddRepository(headerRepository(RepoPython, python)); err != nil {
		return err
	}
	return b.AddRepository(headerRepository(RepoNumpy, numpy))
}

// headerRepository links the probed include directory under the repository's
// own name and exposes everything in it.
func headerRepository(name string, spec probe.Spec) *graph.ProbeRepository {
	return &graph.ProbeRepository{
		Name:  name,
		Facts: []probe.Spec{spec},
		Synthesize: func(facts map[string]string) ([]repo.Link, string, error) {
			root := facts[spec.Fact]
			body, err := manifest.Render(manifest.Doc{
				Libraries: []manifest.Library{{
					Name:      name,
					HdrsGlobs: []string{name + "/**/*.h"},
					Includes:  []string{name},
				}},
			})
			if err != nil {
				return nil, "", err
			}
			return []repo.Link{{Target: root, LocalName: name}}, body, nil
		},
	}
}
