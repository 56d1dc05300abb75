package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
	"github.com/vk/depforge/internal/fetch"
	"github.com/vk/depforge/internal/probe"
	"github.com/vk/depforge/internal/repo"
)

// State tracks a Builder through its lifecycle. There is no rollback state:
// any failure aborts the run as a whole.
type State int

const (
	StateUnstarted State = iota
	StateRegistering
	StateComplete
)

// ProbeRepository declares a host-introspected repository: the facts it
// consumes and a synthesis function turning resolved facts into links and a
// manifest body. Declaring facts as data (rather than relying on
// registration call order) is what makes the shared-fact ordering explicit.
type ProbeRepository struct {
	Name string

	// Facts are resolved, via the memoizing prober, before Synthesize is
	// called. Results are keyed by fact name in the map handed to
	// Synthesize.
	Facts []probe.Spec

	// Solib optionally names a shared-library fact; its resolved value (the
	// verified library file path) appears in the fact map under the Dir
	// spec's fact name.
	Solib *probe.SolibSpec

	// Synthesize maps resolved facts to the repository's links and
	// manifest body. It must be pure: same facts, same output.
	Synthesize func(facts map[string]string) ([]repo.Link, string, error)
}

// Module registers a related set of dependencies with a Builder. Concrete
// implementations live under modules/.
type Module interface {
	Register(b *Builder) error
}

// Builder accumulates registrations and materializes them in one Build call
// per setup run.
type Builder struct {
	state   State
	prober  *probe.Prober
	synth   *repo.Synthesizer
	fetcher *fetch.Fetcher

	// offline skips fetch-based entries, leaving probe-derived setup
	// intact. Useful on machines that reach the interpreter but not the
	// mirrors.
	offline bool

	names      map[string]struct{}
	archives   []*config.Archive
	tools      []*config.Tool
	probeRepos []*ProbeRepository
	order      []*Entry
}

// Options carries the collaborators a Builder materializes through.
type Options struct {
	Prober      *probe.Prober
	Synthesizer *repo.Synthesizer
	Fetcher     *fetch.Fetcher
	Offline     bool
}

// NewBuilder returns an empty Builder in StateUnstarted.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		prober:  opts.Prober,
		synth:   opts.Synthesizer,
		fetcher: opts.Fetcher,
		offline: opts.Offline,
		names:   make(map[string]struct{}),
	}
}

// State returns the builder's current lifecycle state.
func (b *Builder) State() State {
	return b.state
}

// AddArchive registers a pinned archive. Fetch-based entries are
// self-contained, so their relative order carries no meaning.
func (b *Builder) AddArchive(spec *config.Archive) error {
	if err := b.reserve(spec.Name, KindArchive); err != nil {
		return err
	}
	b.archives = append(b.archives, spec)
	return nil
}

// AddTool registers a pinned build tool.
func (b *Builder) AddTool(spec *config.Tool) error {
	if err := b.reserve(spec.Name, KindTool); err != nil {
		return err
	}
	b.tools = append(b.tools, spec)
	return nil
}

// AddRepository registers a probe-derived repository.
func (b *Builder) AddRepository(reg *ProbeRepository) error {
	if err := b.reserve(reg.Name, KindRepository); err != nil {
		return err
	}
	b.probeRepos = append(b.probeRepos, reg)
	return nil
}

// reserve claims a globally unique name and records registration order. It
// runs before any filesystem effect, so a collision aborts with nothing
// materialized for either colliding entry.
func (b *Builder) reserve(name string, kind Kind) error {
	if b.state == StateComplete {
		return errors.New("graph is complete; no further registration is allowed")
	}
	if name == "" {
		return errors.New("dependency name must not be empty")
	}
	if _, exists := b.names[name]; exists {
		return &NameCollisionError{Name: name}
	}
	b.state = StateRegistering
	b.names[name] = struct{}{}
	b.order = append(b.order, &Entry{Name: name, Kind: kind})
	return nil
}

// Build materializes every registered entry: fetch-based entries first, then
// probe-derived repositories in registration order, with shared facts
// resolved once through the prober's cache. Build may be called once per
// run; any error aborts the whole graph.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	if b.state == StateComplete {
		return nil, errors.New("graph already built; Build is once per setup run")
	}
	logger := ctxlog.FromContext(ctx)

	for _, spec := range b.archives {
		if b.offline {
			logger.Warn("Offline mode: skipping archive fetch.", "archive", spec.Name)
			continue
		}
		if err := b.fetcher.Fetch(ctx, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range b.tools {
		if b.offline {
			logger.Warn("Offline mode: skipping tool fetch.", "tool", spec.Name)
			continue
		}
		if err := b.fetcher.FetchTool(ctx, spec); err != nil {
			return nil, err
		}
	}
	logger.Debug("Fetch-based entries materialized.", "archives", len(b.archives), "tools", len(b.tools))

	built := make(map[string]*repo.ExternalRepository, len(b.probeRepos))
	for _, reg := range b.probeRepos {
		synthesized, err := b.buildRepository(ctx, reg)
		if err != nil {
			return nil, err
		}
		built[reg.Name] = synthesized
	}
	logger.Debug("Probe-derived repositories synthesized.", "count", len(b.probeRepos))

	graph := &Graph{byName: make(map[string]*Entry, len(b.order))}
	for _, entry := range b.order {
		if entry.Kind == KindRepository {
			entry.Repository = built[entry.Name]
		}
		graph.entries = append(graph.entries, entry)
		graph.byName[entry.Name] = entry
	}
	b.state = StateComplete
	return graph, nil
}

// buildRepository resolves a registration's declared facts and synthesizes
// the repository.
func (b *Builder) buildRepository(ctx context.Context, reg *ProbeRepository) (*repo.ExternalRepository, error) {
	facts := make(map[string]string, len(reg.Facts)+1)
	for _, spec := range reg.Facts {
		result, err := b.prober.Probe(ctx, spec)
		if err != nil {
			return nil, err
		}
		facts[spec.Fact] = result.Path
	}
	if reg.Solib != nil {
		result, err := b.prober.SharedLibrary(ctx, *reg.Solib)
		if err != nil {
			return nil, err
		}
		facts[reg.Solib.Dir.Fact] = result.Path
	}

	links, body, err := reg.Synthesize(facts)
	if err != nil {
		return nil, fmt.Errorf("repository %q: %w", reg.Name, err)
	}
	return b.synth.Synthesize(ctx, reg.Name, links, body)
}
