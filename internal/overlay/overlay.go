// ABOUTME: Online-fix overlay applier for Unity game directories
// ABOUTME: Copies top-level overlay entries into the game and merges Data into its data dir

package overlay

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/luulek/depotfetch/internal/fsutil"
	"github.com/luulek/depotfetch/internal/log"
)

const (
	// Marker identifies a supported (Unity) game directory.
	Marker = "UnityCrashHandler64.exe"
	// DataDirName is the reserved overlay subdirectory merged into the
	// game's data dir.
	DataDirName = "Data"
)

var (
	// ErrUnsupportedTarget means the target is not a Unity game directory.
	ErrUnsupportedTarget = errors.New("unsupported target")
	// ErrMissingOverlayAssets means the local overlay source is incomplete.
	ErrMissingOverlayAssets = errors.New("missing overlay assets")

	errNoSource = fmt.Errorf("%w: overlay folder not found", ErrMissingOverlayAssets)
	errNoData   = fmt.Errorf("%w: %s folder not found in overlay", ErrMissingOverlayAssets, DataDirName)
)

// ApplyError wraps a failure while copying the overlay into the target.
type ApplyError struct {
	Err error
}

func (e *ApplyError) Error() string {
	return "applying overlay: " + e.Err.Error()
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Result describes a completed overlay application.
type Result struct {
	DataDir string
	Copied  int
	Skipped []fsutil.Skipped
}

// Applier copies the overlay rooted at SourceDir into game directories.
type Applier struct {
	SourceDir string
}

// New creates an Applier for the overlay at sourceDir.
func New(sourceDir string) *Applier {
	return &Applier{SourceDir: sourceDir}
}

// Apply installs the overlay into target. Nothing is written unless the
// target is a Unity game with a data dir and the overlay source is complete.
// Re-applying the same overlay leaves the target unchanged.
func (a *Applier) Apply(target string) (*Result, error) {
	if !fsutil.Exists(filepath.Join(target, Marker)) {
		return nil, fmt.Errorf("%w: %s not found in %s", ErrUnsupportedTarget, Marker, target)
	}
	dataDir, err := FindDataDir(target)
	if err != nil {
		return nil, err
	}
	if !fsutil.IsDir(a.SourceDir) {
		return nil, errNoSource
	}
	srcData := filepath.Join(a.SourceDir, DataDirName)
	if !fsutil.IsDir(srcData) {
		return nil, errNoData
	}

	res := &Result{DataDir: dataDir}
	if err := a.copyTopLevel(target, res); err != nil {
		return nil, &ApplyError{Err: err}
	}
	if err := mergeData(srcData, dataDir, res); err != nil {
		return nil, &ApplyError{Err: err}
	}

	log.Info("overlay: applied to %s (%d file(s), %d skipped)", target, res.Copied, len(res.Skipped))
	return res, nil
}

// FindDataDir returns the first directory in target whose name contains
// "data" in any letter case. Entries are checked in lexical order.
func FindDataDir(target string) (string, error) {
	entries, err := os.ReadDir(target)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUnsupportedTarget, target, err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.Contains(strings.ToLower(e.Name()), "data") {
			return filepath.Join(target, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no data directory in %s", ErrUnsupportedTarget, target)
}

// copyTopLevel places every overlay entry except the reserved data dir
// directly into target. Directories replace their destination wholesale.
func (a *Applier) copyTopLevel(target string, res *Result) error {
	entries, err := os.ReadDir(a.SourceDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", a.SourceDir, err)
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), DataDirName) {
			continue
		}
		src := filepath.Join(a.SourceDir, e.Name())
		dst := filepath.Join(target, e.Name())

		if e.IsDir() {
			if err := fsutil.ReplaceTree(src, dst); err != nil {
				return err
			}
		} else if err := fsutil.CopyFile(src, dst); err != nil {
			return err
		}
		res.Copied++
		log.Debug("overlay: %s -> %s", src, dst)
	}
	return nil
}

// mergeData copies every file below src into dst at the same relative path.
// Per-file failures are recorded in res.Skipped.
func mergeData(src, dst string, res *Result) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		}
		if err := fsutil.CopyFile(path, target); err != nil {
			res.Skipped = append(res.Skipped, fsutil.Skipped{Src: path, Dst: target, Err: err})
			log.Warn("overlay: %v", err)
			return nil
		}
		res.Copied++
		return nil
	})
}

// Message returns the text shown to the user for an Apply error.
func Message(err error) string {
	var ae *ApplyError
	switch {
	case errors.Is(err, ErrUnsupportedTarget):
		return "This is not a unity game! please go to https://online-fix.me/ for manual installation"
	case errors.Is(err, errNoSource):
		return "OnlineFix folder missing from Files folder"
	case errors.Is(err, errNoData):
		return "OnlineFix/Data missing in Files/OnlineFix"
	case errors.As(err, &ae):
		return "Online-Fix failed: " + ae.Err.Error()
	default:
		return "Online-Fix failed: " + err.Error()
	}
}

// SuccessMessage is shown after a successful Apply.
const SuccessMessage = "Done! (Online-Fix applied)"
