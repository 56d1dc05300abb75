package fetch

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// extract unpacks archivePath into dest, removing stripPrefix from every
// entry. The container format is detected from the source URL's suffix (the
// temporary download file carries no extension of its own).
func extract(archivePath, sourceURL, dest, stripPrefix string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(sourceURL, ".zip"):
		return extractZip(f, dest, stripPrefix)
	case strings.HasSuffix(sourceURL, ".tar.gz"), strings.HasSuffix(sourceURL, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		return extractTar(tar.NewReader(gz), dest, stripPrefix)
	case strings.HasSuffix(sourceURL, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		return extractTar(tar.NewReader(zr), dest, stripPrefix)
	case strings.HasSuffix(sourceURL, ".tar.lz4"):
		return extractTar(tar.NewReader(lz4.NewReader(f)), dest, stripPrefix)
	case strings.HasSuffix(sourceURL, ".tar"):
		return extractTar(tar.NewReader(f), dest, stripPrefix)
	default:
		return fmt.Errorf("unsupported archive format in %q", sourceURL)
	}
}

// extractTar walks a tar stream and writes entries under dest.
func extractTar(tr *tar.Reader, dest, stripPrefix string) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name, ok := entryName(hdr.Name, stripPrefix)
		if !ok {
			continue
		}
		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Hard links, devices and the like do not occur in source
			// archives we consume; skip rather than fail.
		}
	}
}

// extractZip writes a zip archive's entries under dest.
func extractZip(f *os.File, dest, stripPrefix string) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return err
	}

	for _, entry := range zr.File {
		name, ok := entryName(entry.Name, stripPrefix)
		if !ok {
			continue
		}
		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := entry.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode().Perm())
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return err
		}
		rc.Close()
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

// entryName normalizes an archive entry name and strips the declared prefix.
// Entries outside the prefix (and the prefix directory itself) are skipped.
func entryName(raw, stripPrefix string) (string, bool) {
	name := path.Clean(strings.TrimPrefix(raw, "./"))
	if name == "." || name == "" {
		return "", false
	}
	if stripPrefix != "" {
		prefix := path.Clean(stripPrefix)
		if name == prefix {
			return "", false
		}
		if !strings.HasPrefix(name, prefix+"/") {
			return "", false
		}
		name = name[len(prefix)+1:]
	}
	return name, true
}

// securePath joins name to dest and rejects entries that would escape it.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction root", name)
	}
	return target, nil
}
