package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
	"github.com/vk/depforge/internal/graph"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	model   *config.Model
	modules []graph.Module
}

// NewApp is the constructor for the main application. It loads the
// workspace declaration through the given loader and returns a fully
// initialized App with its own isolated logger. A failure to load the
// workspace is a fatal startup error and panics; cmd/cli recovers and turns
// it into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...graph.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.WorkspacePath)
	if err != nil {
		panic(fmt.Errorf("failed to load workspace: %w", err))
	}
	if appConfig.OutputDir != "" {
		model.Settings.OutputDir = appConfig.OutputDir
	}
	logger.Debug("Workspace loaded.",
		"archives", len(model.Archives), "tools", len(model.Tools),
		"output_dir", model.Settings.OutputDir)

	if len(modules) == 0 {
		modules = coreModules(model.Settings)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		model:   model,
		modules: modules,
	}
}

// Model returns the loaded workspace model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
