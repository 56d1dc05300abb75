// Package probe discovers host-environment facts by invoking an external
// interpreter and parsing its output.
//
// A fact is a single filesystem path, such as the include directory of an
// installed framework. Probing is expensive (a fresh interpreter process per
// fact) and must be deterministic within one setup run, so the Prober
// memoizes results: the same spec issued twice returns the cached result and
// invokes the tool exactly once.
//
// The prober trusts the invoked tool's self-report; it does not check that a
// reported header directory exists. The one exception is shared-library
// discovery, which stats the computed library file because a dangling
// reference there produces confusing linker failures much later.
package probe
