package app

import (
	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/graph"
	"github.com/vk/depforge/modules/framework"
	"github.com/vk/depforge/modules/pyruntime"
)

// coreModules returns the probe-derived registrations in their fixed order:
// the framework header repositories first (resolving and caching the shared
// include-path fact), then the interpreter repositories, then the shared
// library whose manifest depends on them.
func coreModules(settings *config.Settings) []graph.Module {
	return []graph.Module{
		&framework.Headers{PythonVar: settings.PythonVar},
		&pyruntime.Module{PythonVar: settings.PythonVar},
		&framework.Solib{PythonVar: settings.PythonVar},
	}
}
