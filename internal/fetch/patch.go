package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/vk/depforge/internal/config"
	"github.com/vk/depforge/internal/ctxlog"
)

// applyPatches applies the declared patch list, in order, to the extracted
// tree at dest. Patches are unified diffs applied in-process; the first
// failure aborts with a PatchApplyError and the caller removes dest.
func applyPatches(ctx context.Context, name, dest string, patches []*config.Patch) error {
	logger := ctxlog.FromContext(ctx)

	for _, patch := range patches {
		logger.Debug("Applying patch.", "archive", name, "patch", patch.File)
		if err := applyPatch(dest, patch); err != nil {
			return &PatchApplyError{Name: name, Patch: patch.File, Err: err}
		}
	}
	return nil
}

// applyPatch applies a single patch file to the tree at dest.
func applyPatch(dest string, patch *config.Patch) error {
	f, err := os.Open(patch.File)
	if err != nil {
		return err
	}
	defer f.Close()

	files, _, err := gitdiff.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse patch: %w", err)
	}

	// The parser already removes the conventional a/ and b/ diff prefixes,
	// which corresponds to -p1; only deeper strip levels need extra work.
	extraStrip := stripLevel(patch.Args) - 1

	for _, file := range files {
		if err := applyFilePatch(dest, file, extraStrip); err != nil {
			return err
		}
	}
	return nil
}

// applyFilePatch applies one file's hunks inside dest.
func applyFilePatch(dest string, file *gitdiff.File, extraStrip int) error {
	oldName := stripComponents(file.OldName, extraStrip)
	newName := stripComponents(file.NewName, extraStrip)

	if file.IsDelete {
		return os.Remove(filepath.Join(dest, filepath.FromSlash(oldName)))
	}
	if newName == "" {
		return fmt.Errorf("patch fragment has no target file name")
	}

	var original []byte
	if !file.IsNew {
		var err error
		original, err = os.ReadFile(filepath.Join(dest, filepath.FromSlash(oldName)))
		if err != nil {
			return err
		}
	}

	var patched bytes.Buffer
	if err := gitdiff.Apply(&patched, bytes.NewReader(original), file); err != nil {
		return err
	}

	target := filepath.Join(dest, filepath.FromSlash(newName))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if file.NewMode != 0 {
		mode = os.FileMode(file.NewMode).Perm()
	}
	if err := os.WriteFile(target, patched.Bytes(), mode); err != nil {
		return err
	}

	// A rename leaves the old path dead.
	if file.IsRename && oldName != "" && oldName != newName {
		if err := os.Remove(filepath.Join(dest, filepath.FromSlash(oldName))); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// stripLevel extracts the -pN strip level from patch arguments, defaulting
// to 1, the level git-produced diffs are written for.
func stripLevel(args []string) int {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-p") {
			if n, err := strconv.Atoi(arg[2:]); err == nil && n >= 0 {
				return n
			}
		}
	}
	return 1
}

// stripComponents removes n leading path components from a slash-separated
// name.
func stripComponents(name string, n int) string {
	for i := 0; i < n && name != ""; i++ {
		idx := strings.IndexByte(name, '/')
		if idx < 0 {
			return ""
		}
		name = name[idx+1:]
	}
	return name
}
