// Package graph orchestrates one dependency-setup run: it collects every
// named external dependency (pinned archives, pinned tools, probe-derived
// repositories), enforces global name uniqueness, and materializes them in a
// fixed, documented order.
//
// The run is all-or-nothing. Registration records intent without touching
// the filesystem; Build performs the work and either returns a fully
// resolved graph or an error with nothing usable left behind for the failed
// entry. There is no partial or degraded graph.
//
// Ordering between probe-derived repositories is expressed as data: each
// registration declares the facts it consumes, and the builder resolves
// facts through a memoizing prober. A fact shared by several repositories is
// probed exactly once, regardless of registration order.
package graph
