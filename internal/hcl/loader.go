package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
	"github.com/vk/depforge/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL workspace loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and merges the declared
// blocks into one model. A path may be a single file or a directory walked
// recursively.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error accessing workspace path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl workspace files found under %v", paths)
	}
	logger.Debug("Discovered workspace files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse workspace file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode workspace file %s: %w", file, diags)
		}

		for _, block := range root.Settings {
			if model.Settings != nil {
				return nil, fmt.Errorf("duplicate settings block in %s; a workspace declares settings at most once", file)
			}
			model.Settings = translateSettings(block)
		}
		for _, block := range root.Archives {
			archive, err := translateArchive(block)
			if err != nil {
				return nil, fmt.Errorf("archive %q in %s: %w", block.Name, file, err)
			}
			model.Archives = append(model.Archives, archive)
		}
		for _, block := range root.Tools {
			model.Tools = append(model.Tools, translateTool(block))
		}
	}

	if model.Settings == nil {
		model.Settings = config.DefaultSettings()
	}
	logger.Debug("Workspace loading complete.",
		"archives", len(model.Archives), "tools", len(model.Tools))
	return model, nil
}
