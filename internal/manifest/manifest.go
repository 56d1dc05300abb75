// Package manifest renders generated build-manifest bodies for synthesized
// repositories.
//
// Rendering is a pure function from (facts, dependency names) to text: no
// filesystem access, no process invocation. Given equal inputs the output is
// byte-identical, which is what makes repository synthesis idempotent.
package manifest

import (
	"fmt"
	"strings"
	"text/template"
)

// Library describes one consumable library target in a generated manifest.
type Library struct {
	Name string

	// HdrsGlobs are glob patterns, scoped to the repository's link-local
	// subtree, for the headers the target exposes.
	HdrsGlobs []string

	// Srcs are explicit source entries, used for linkable binary artifacts
	// such as a discovered shared library.
	Srcs []string

	// Includes are include-search roots, normally just the local link name.
	Includes []string

	// Deps are names of other synthesized repositories this target
	// requires. Rendered as external-repository references.
	Deps []string
}

// FileGroup describes a named group of files, either an explicit list or a
// glob over the linked subtree.
type FileGroup struct {
	Name      string
	Srcs      []string
	SrcsGlobs []string
}

// Alias gives a target a second addressable name, e.g. a stable "bin" name
// for a versioned tool binary.
type Alias struct {
	Name   string
	Actual string
}

// Doc is the full content of one generated manifest.
type Doc struct {
	Libraries  []Library
	FileGroups []FileGroup
	Aliases    []Alias
}

const header = `# Generated by depforge. Do not edit.

package(default_visibility = ["//visibility:public"])
`

var tmpl = template.Must(template.New("manifest").Funcs(template.FuncMap{
	"repoRef": repoRef,
}).Parse(`{{range .Libraries}}
cc_library(
    name = "{{.Name}}",
{{- if .Srcs}}
    srcs = [
{{- range .Srcs}}
        "{{.}}",
{{- end}}
    ],
{{- end}}
{{- if .HdrsGlobs}}
    hdrs = glob(
        [
{{- range .HdrsGlobs}}
            "{{.}}",
{{- end}}
        ],
        allow_empty = True,
    ),
{{- end}}
{{- if .Includes}}
    includes = [
{{- range .Includes}}
        "{{.}}",
{{- end}}
    ],
{{- end}}
{{- if .Deps}}
    deps = [
{{- range .Deps}}
        "{{repoRef .}}",
{{- end}}
    ],
{{- end}}
)
{{end}}{{range .FileGroups}}
filegroup(
    name = "{{.Name}}",
{{- if .SrcsGlobs}}
    srcs = glob(
        [
{{- range .SrcsGlobs}}
            "{{.}}",
{{- end}}
        ],
        allow_empty = True,
    ),
{{- end}}
{{- if .Srcs}}
    srcs = [
{{- range .Srcs}}
        "{{.}}",
{{- end}}
    ],
{{- end}}
)
{{end}}{{range .Aliases}}
alias(
    name = "{{.Name}}",
    actual = "{{.Actual}}",
)
{{end}}`))

// Render produces the manifest body for doc. The slices are rendered in the
// order given; callers that want stable output pass stable input.
func Render(doc Doc) (string, error) {
	var b strings.Builder
	b.WriteString(header)
	if err := tmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("failed to render manifest: %w", err)
	}
	return b.String(), nil
}

// repoRef formats a repository name as an external-repository target
// reference.
func repoRef(name string) string {
	return fmt.Sprintf("@%s//:%s", name, name)
}
