package app

import (
	"context"
	"fmt"

	"github.com/vk/depforge/internal/ctxlog"
	"github.com/vk/depforge/internal/fetch"
	"github.com/vk/depforge/internal/graph"
	"github.com/vk/depforge/internal/probe"
	"github.com/vk/depforge/internal/repo"
)

// Run performs one complete setup run: register everything, then build.
// Every error is unrecoverable within the run; downstream consumers see a
// fully resolved graph or no graph at all.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	outputDir := a.model.Settings.OutputDir
	builder := graph.NewBuilder(graph.Options{
		Prober:      probe.NewProber(probe.ExecRunner{}),
		Synthesizer: repo.NewSynthesizer(outputDir),
		Fetcher:     fetch.NewFetcher(outputDir, nil),
		Offline:     appConfig.Offline,
	})

	for _, archive := range a.model.Archives {
		if err := builder.AddArchive(archive); err != nil {
			return fmt.Errorf("failed to register archive: %w", err)
		}
	}
	for _, tool := range a.model.Tools {
		if err := builder.AddTool(tool); err != nil {
			return fmt.Errorf("failed to register tool: %w", err)
		}
	}
	for _, mod := range a.modules {
		if err := mod.Register(builder); err != nil {
			return fmt.Errorf("failed to register module repositories: %w", err)
		}
	}
	a.logger.Debug("All dependencies registered.")

	a.logger.Info("Resolving external dependency graph...")
	depGraph, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	a.logger.Info("Dependency graph resolved.",
		"entries", depGraph.Len(),
		"archives", depGraph.CountByKind(graph.KindArchive),
		"tools", depGraph.CountByKind(graph.KindTool),
		"repositories", depGraph.CountByKind(graph.KindRepository),
		"output_dir", outputDir)

	a.logger.Debug("App.Run method finished.")
	return nil
}
