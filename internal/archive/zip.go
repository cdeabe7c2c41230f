// ABOUTME: Zip extraction into a scratch directory with path traversal protection
// ABOUTME: Uses klauspost/compress/zip, a drop-in faster archive/zip

package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extension is the only archive format the catalog serves.
const Extension = ".zip"

// ExtractZip extracts the archive at src into destDir, creating destDir if
// needed. Existing files are overwritten. Entries whose path would land
// outside destDir abort the extraction.
func ExtractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", src, err)
	}
	defer r.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", destDir, err)
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", absDest, err)
	}

	for _, f := range r.File {
		target, err := entryPath(absDest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// entryPath maps an archive entry name onto the filesystem below dest.
func entryPath(dest, name string) (string, error) {
	// Archive paths use forward slashes; some Windows tools emit backslashes.
	clean := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	target := filepath.Join(dest, clean)
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}

	if mt := f.Modified; !mt.IsZero() {
		_ = os.Chtimes(target, mt, mt)
	}
	return nil
}
