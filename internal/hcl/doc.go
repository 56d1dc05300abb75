// Package hcl loads workspace declarations written in HCL and translates
// them into the format-agnostic config model.
//
// A workspace is one or more .hcl files containing archive, tool and
// settings blocks. Inside an archive block the declared version is exposed
// as the ${version} variable, so URL lists and strip prefixes stay in sync
// with a single declaration.
package hcl
