// Package config defines the format-agnostic model of a workspace
// declaration: the pinned archive set, pinned build tools, and the settings
// that steer host probing.
//
// The config.Model is the single source of truth for the graph builder.
// Concrete loaders, such as the HCL one, live in separate packages and
// translate their own schema into this model.
package config
