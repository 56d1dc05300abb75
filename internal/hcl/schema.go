package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all recognized top-level blocks from one workspace file.
type fileRoot struct {
	Settings []*settingsBlock `hcl:"settings,block"`
	Archives []*archiveBlock  `hcl:"archive,block"`
	Tools    []*toolBlock     `hcl:"tool,block"`
	Remain   hcl.Body         `hcl:",remain"`
}

// settingsBlock holds workspace-level probing and output knobs.
type settingsBlock struct {
	PythonVar string `hcl:"python_var,optional"`
	OutputDir string `hcl:"output_dir,optional"`
}

// archiveBlock is decoded in two phases: the version label first, then the
// remaining body with ${version} available as a variable.
type archiveBlock struct {
	Name    string   `hcl:"name,label"`
	Version string   `hcl:"version,optional"`
	Remain  hcl.Body `hcl:",remain"`
}

// archiveBody is the second-phase decode of an archive block.
type archiveBody struct {
	URLs        []string      `hcl:"urls"`
	SHA256      string        `hcl:"sha256,optional"`
	BLAKE3      string        `hcl:"blake3,optional"`
	StripPrefix string        `hcl:"strip_prefix,optional"`
	BuildFile   string        `hcl:"build_file,optional"`
	Patches     []*patchBlock `hcl:"patch,block"`
}

// patchBlock declares one patch file and its apply arguments.
type patchBlock struct {
	File string   `hcl:"file"`
	Args []string `hcl:"args,optional"`
}

// toolBlock declares a pinned build tool. The URL template uses a literal
// {version} placeholder substituted at fetch time rather than HCL
// interpolation, because the same template is reusable across versions.
type toolBlock struct {
	Name        string `hcl:"name,label"`
	Version     string `hcl:"version"`
	URLTemplate string `hcl:"url_template"`
	SHA256      string `hcl:"sha256,optional"`
	Binary      string `hcl:"binary"`
}
