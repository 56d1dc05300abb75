package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/depforge/internal/config"
)

// translateSettings converts a settings block, filling defaults for omitted
// attributes.
func translateSettings(block *settingsBlock) *config.Settings {
	settings := config.DefaultSettings()
	if block.PythonVar != "" {
		settings.PythonVar = block.PythonVar
	}
	if block.OutputDir != "" {
		settings.OutputDir = block.OutputDir
	}
	return settings
}

// translateArchive finishes the two-phase decode of an archive block: the
// body is evaluated with ${version} bound to the block's declared version.
func translateArchive(block *archiveBlock) (*config.Archive, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"version": cty.StringVal(block.Version),
		},
	}

	var body archiveBody
	if diags := gohcl.DecodeBody(block.Remain, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode body: %w", diags)
	}
	if len(body.URLs) == 0 {
		return nil, fmt.Errorf("at least one download URL is required")
	}

	archive := &config.Archive{
		Name:        block.Name,
		URLs:        body.URLs,
		SHA256:      body.SHA256,
		BLAKE3:      body.BLAKE3,
		StripPrefix: body.StripPrefix,
		BuildFile:   body.BuildFile,
	}
	for _, p := range body.Patches {
		archive.Patches = append(archive.Patches, &config.Patch{File: p.File, Args: p.Args})
	}
	return archive, nil
}

// translateTool converts a tool block.
func translateTool(block *toolBlock) *config.Tool {
	return &config.Tool{
		Name:        block.Name,
		Version:     block.Version,
		URLTemplate: block.URLTemplate,
		SHA256:      block.SHA256,
		Binary:      block.Binary,
	}
}
