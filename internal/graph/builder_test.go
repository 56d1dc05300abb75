package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/fetch"
	"github.com/vk/depforge/internal/probe"
	"github.com/vk/depforge/internal/repo"
)

// fakeRunner scripts probe outputs per fact and counts invocations.
type fakeRunner struct {
	outputs map[string]string // keyed by last arg, the probe program
	calls   int
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	r.calls++
	if len(args) > 0 {
		if out, ok := r.outputs[args[len(args)-1]]; ok {
			return out + "\n", "", 0, nil
		}
	}
	return "/probed/default\n", "", 0, nil
}

// newTestBuilder wires a builder against a temp output root and the given
// runner.
func newTestBuilder(t *testing.T, runner probe.Runner, offline bool) (*Builder, string) {
	t.Helper()
	root := t.TempDir()
	b := NewBuilder(Options{
		Prober:      probe.NewProber(runner),
		Synthesizer: repo.NewSynthesizer(root),
		Fetcher:     fetch.NewFetcher(root, nil),
		Offline:     offline,
	})
	return b, root
}

// headerRepo is a minimal probe-derived registration used across tests.
func headerRepo(name string, fact probe.Spec) *ProbeRepository {
	return &ProbeRepository{
		Name:  name,
		Facts: []probe.Spec{fact},
		Synthesize: func(facts map[string]string) ([]repo.Link, string, error) {
			return []repo.Link{{Target: facts[fact.Fact], LocalName: name}}, "# " + name + "\n", nil
		},
	}
}

func TestBuilder_NameCollisionAbortsBeforeAnyEffect(t *testing.T) {
	b, root := newTestBuilder(t, &fakeRunner{}, false)

	require.NoError(t, b.AddArchive(&config.Archive{Name: "eigen_archive", URLs: []string{"http://invalid"}}))
	err := b.AddArchive(&config.Archive{Name: "eigen_archive", URLs: []string{"http://invalid"}})

	var collision *NameCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "eigen_archive", collision.Name)

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "registration must not touch the filesystem")
}

func TestBuilder_CollisionAcrossKinds(t *testing.T) {
	b, _ := newTestBuilder(t, &fakeRunner{}, false)

	require.NoError(t, b.AddArchive(&config.Archive{Name: "shared_name", URLs: []string{"http://invalid"}}))
	err := b.AddRepository(headerRepo("shared_name", probe.Spec{Fact: "f", Command: "python3"}))

	var collision *NameCollisionError
	require.ErrorAs(t, err, &collision)
}

func TestBuilder_SharedFactProbedOnce(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"include-query": "/opt/fake/include"}}
	b, root := newTestBuilder(t, runner, false)

	shared := probe.Spec{Fact: "framework_include", Command: "python3", Args: []string{"-c", "include-query"}}
	names := []string{"eigen_includes", "absl_includes", "zlib_includes", "protobuf_includes", "re2_includes"}
	for _, name := range names {
		require.NoError(t, b.AddRepository(headerRepo(name, shared)))
	}

	g, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(names), g.Len())
	assert.Equal(t, 1, runner.calls, "five repositories share one fact; the tool runs once")

	for _, name := range names {
		target, err := os.Readlink(filepath.Join(root, name, name))
		require.NoError(t, err)
		assert.Equal(t, "/opt/fake/include", target)
	}
}

func TestBuilder_PreservesRegistrationOrder(t *testing.T) {
	b, _ := newTestBuilder(t, &fakeRunner{}, true)

	require.NoError(t, b.AddArchive(&config.Archive{Name: "zlib_archive", URLs: []string{"http://invalid"}}))
	require.NoError(t, b.AddTool(&config.Tool{Name: "protoc"}))
	require.NoError(t, b.AddRepository(headerRepo("python_includes", probe.Spec{Fact: "python_include", Command: "python3"})))

	g, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"zlib_archive", "protoc", "python_includes"}, g.Names())

	entry, ok := g.Entry("python_includes")
	require.True(t, ok)
	assert.Equal(t, KindRepository, entry.Kind)
	require.NotNil(t, entry.Repository)
	assert.Equal(t, "python_includes", entry.Repository.Name)
}

func TestBuilder_StateMachine(t *testing.T) {
	b, _ := newTestBuilder(t, &fakeRunner{}, true)
	assert.Equal(t, StateUnstarted, b.State())

	require.NoError(t, b.AddRepository(headerRepo("numpy_includes", probe.Spec{Fact: "numpy_include", Command: "python3"})))
	assert.Equal(t, StateRegistering, b.State())

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateComplete, b.State())

	_, err = b.Build(context.Background())
	require.Error(t, err, "Build is once per setup run")

	err = b.AddArchive(&config.Archive{Name: "late", URLs: []string{"http://invalid"}})
	require.Error(t, err, "registration after completion is rejected")
}

func TestBuilder_OfflineSkipsFetches(t *testing.T) {
	b, root := newTestBuilder(t, &fakeRunner{}, true)

	// The URL is unreachable; offline mode must never attempt it.
	require.NoError(t, b.AddArchive(&config.Archive{Name: "eigen_archive", URLs: []string{"http://127.0.0.1:1/eigen.tar.gz"}}))
	require.NoError(t, b.AddRepository(headerRepo("python_includes", probe.Spec{Fact: "python_include", Command: "python3"})))

	g, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.NoDirExists(t, filepath.Join(root, "eigen_archive"))
	assert.DirExists(t, filepath.Join(root, "python_includes"))
}

func TestBuilder_ProbeFailureAbortsRun(t *testing.T) {
	b, root := newTestBuilder(t, &failingRunner{}, true)

	require.NoError(t, b.AddRepository(headerRepo("eigen_includes", probe.Spec{Fact: "framework_include", Command: "python3"})))

	_, err := b.Build(context.Background())
	var probeErr *probe.ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.NoDirExists(t, filepath.Join(root, "eigen_includes"))
}

// failingRunner always exits non-zero.
type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	return "", "import error", 1, nil
}
