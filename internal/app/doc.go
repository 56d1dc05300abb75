// Package app wires the application together: configuration loading, logger
// construction, module registration and the single setup run. The cmd/cli
// entrypoint stays thin; everything testable lives here.
package app
