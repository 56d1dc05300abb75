package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Library(t *testing.T) {
	body, err := Render(Doc{
		Libraries: []Library{{
			Name:      "absl_includes",
			HdrsGlobs: []string{"absl_includes/absl/**/*.h", "absl_includes/absl/**/*.inc"},
			Includes:  []string{"absl_includes"},
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, `package(default_visibility = ["//visibility:public"])`)
	assert.Contains(t, body, `name = "absl_includes"`)
	assert.Contains(t, body, `"absl_includes/absl/**/*.h"`)
	assert.Contains(t, body, `includes = [`)
	assert.NotContains(t, body, "deps =", "no deps were declared")
}

func TestRender_LibraryWithDeps(t *testing.T) {
	body, err := Render(Doc{
		Libraries: []Library{{
			Name:      "tensorflow_includes",
			HdrsGlobs: []string{"tensorflow_includes/**/*.h"},
			Includes:  []string{"tensorflow_includes"},
			Deps:      []string{"eigen_includes", "absl_includes"},
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, `"@eigen_includes//:eigen_includes"`)
	assert.Contains(t, body, `"@absl_includes//:absl_includes"`)
}

func TestRender_SharedLibraryTarget(t *testing.T) {
	body, err := Render(Doc{
		Libraries: []Library{{
			Name: "tensorflow_solib",
			Srcs: []string{"tensorflow_solib/libtensorflow_framework.so.2"},
			Deps: []string{"python_includes", "numpy_includes"},
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, `srcs = [`)
	assert.Contains(t, body, `"tensorflow_solib/libtensorflow_framework.so.2"`)
	assert.NotContains(t, body, "hdrs =")
}

func TestRender_FileGroups(t *testing.T) {
	body, err := Render(Doc{
		FileGroups: []FileGroup{
			{Name: "protos", SrcsGlobs: []string{"tensorflow_includes/**/*.proto"}},
			{Name: "protoc", Srcs: []string{"bin/protoc"}},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, `name = "protos"`)
	assert.Contains(t, body, `srcs = glob(`)
	assert.Contains(t, body, `"bin/protoc"`)
}

func TestRender_Alias(t *testing.T) {
	body, err := Render(Doc{
		FileGroups: []FileGroup{{Name: "protoc", Srcs: []string{"bin/protoc"}}},
		Aliases:    []Alias{{Name: "bin", Actual: ":protoc"}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, `name = "bin"`)
	assert.Contains(t, body, `actual = ":protoc"`)
}

func TestRender_IsByteIdenticalAcrossRuns(t *testing.T) {
	doc := Doc{
		Libraries: []Library{{
			Name:      "eigen_includes",
			HdrsGlobs: []string{"eigen_includes/Eigen/**", "eigen_includes/unsupported/**"},
			Includes:  []string{"eigen_includes"},
			Deps:      []string{"absl_includes"},
		}},
		FileGroups: []FileGroup{{Name: "protos", SrcsGlobs: []string{"eigen_includes/**/*.proto"}}},
	}

	first, err := Render(doc)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Render(doc)
		require.NoError(t, err)
		require.Equal(t, first, again, "rendering must be byte-identical for identical inputs")
	}
}
