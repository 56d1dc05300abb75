package graph

import (
	"fmt"

	"github.com/vk/depforge/internal/repo"
)

// Kind distinguishes the registration flavors of a graph entry.
type Kind int

const (
	// KindArchive is a pinned, checksummed download-and-extract dependency.
	KindArchive Kind = iota
	// KindTool is a pinned build tool binary.
	KindTool
	// KindRepository is a host-introspected, synthesized repository.
	KindRepository
)

// String returns the human-readable name of a kind.
func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindTool:
		return "tool"
	case KindRepository:
		return "repository"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Entry is one resolved external dependency in a built graph.
type Entry struct {
	Name string
	Kind Kind

	// Repository is set for KindRepository entries once synthesized.
	Repository *repo.ExternalRepository
}

// Graph is the ordered collection of all entries resolved by one setup run.
// It is immutable once returned by Builder.Build.
type Graph struct {
	entries []*Entry
	byName  map[string]*Entry
}

// Names returns entry names in registration order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		names = append(names, e.Name)
	}
	return names
}

// Entry returns the entry with the given name, if present.
func (g *Graph) Entry(name string) (*Entry, bool) {
	e, ok := g.byName[name]
	return e, ok
}

// Len returns the number of entries in the graph.
func (g *Graph) Len() int {
	return len(g.entries)
}

// CountByKind returns the number of entries of the given kind.
func (g *Graph) CountByKind(kind Kind) int {
	n := 0
	for _, e := range g.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// NameCollisionError reports two entries registered under the same
// dependency name within one run.
type NameCollisionError struct {
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("dependency name %q registered twice", e.Name)
}
