// ABOUTME: Archive installer: download, extract, and distribute a batch of catalog items
// ABOUTME: Items run strictly in order; the first failure aborts the rest of the batch

package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/luulek/depotfetch/internal/archive"
	"github.com/luulek/depotfetch/internal/catalog"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/fsutil"
	"github.com/luulek/depotfetch/internal/log"
)

// Fetcher resolves an item name to its archive bytes.
type Fetcher interface {
	Fetch(ctx context.Context, item string) (io.ReadCloser, error)
}

// Result summarizes a successful batch.
type Result struct {
	Elapsed   time.Duration
	Installed []string         // items in processing order
	Copied    int              // files placed into the installation root
	Skipped   []fsutil.Skipped // best-effort copies that failed
}

// Installer runs batches against one local cache directory.
type Installer struct {
	source   Fetcher
	cacheDir string
}

// New creates an Installer that fetches from source and uses cacheDir as
// scratch space.
func New(source Fetcher, cacheDir string) *Installer {
	return &Installer{source: source, cacheDir: cacheDir}
}

// CacheDir returns the scratch directory.
func (i *Installer) CacheDir() string {
	return i.cacheDir
}

// ScratchDir returns where item is extracted.
func (i *Installer) ScratchDir(item string) string {
	return filepath.Join(i.cacheDir, ScratchName(item))
}

// Install downloads, extracts and distributes every item into root.
// The root is validated before any network or filesystem work. Items that
// succeeded before a failure stay installed.
func (i *Installer) Install(ctx context.Context, root string, settings config.Settings, items []string) (*Result, error) {
	if err := ValidateRoot(root); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := os.MkdirAll(i.cacheDir, 0o755); err != nil {
		return nil, &ProcessingError{Err: fmt.Errorf("creating cache dir: %w", err)}
	}

	res := &Result{}
	for _, item := range items {
		if err := i.installOne(ctx, root, settings, item, res); err != nil {
			log.Warn("install: %s failed: %v", item, err)
			return nil, err
		}
	}
	res.Elapsed = time.Since(start)

	log.Info("install: %d item(s), %d file(s), %d skipped in %s",
		len(res.Installed), res.Copied, len(res.Skipped), res.Elapsed)
	return res, nil
}

func (i *Installer) installOne(ctx context.Context, root string, settings config.Settings, item string, res *Result) error {
	if err := validateItem(item); err != nil {
		return &ProcessingError{Item: item, Err: err}
	}

	archivePath := filepath.Join(i.cacheDir, item)
	if err := i.download(ctx, item, archivePath); err != nil {
		return err
	}

	scratch := i.ScratchDir(item)
	if err := archive.ExtractZip(archivePath, scratch); err != nil {
		return &ProcessingError{Item: item, Err: err}
	}
	if err := os.Remove(archivePath); err != nil {
		log.Debug("install: removing %s: %v", archivePath, err)
	}

	if err := distribute(scratch, root, res); err != nil {
		return &ProcessingError{Item: item, Err: err}
	}

	if settings.DeleteAfter {
		if err := os.RemoveAll(scratch); err != nil {
			log.Debug("install: removing %s: %v", scratch, err)
		}
	}

	res.Installed = append(res.Installed, item)
	log.Debug("install: %s done", item)
	return nil
}

// download streams the archive for item into path.
func (i *Installer) download(ctx context.Context, item, path string) error {
	body, err := i.source.Fetch(ctx, item)
	if err != nil {
		var se *catalog.StatusError
		if errors.As(err, &se) {
			return fmt.Errorf("%w: %s: %s", ErrDownloadFailed, item, se.Status)
		}
		return &ProcessingError{Item: item, Err: err}
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return &ProcessingError{Item: item, Err: fmt.Errorf("creating %s: %w", path, err)}
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return &ProcessingError{Item: item, Err: fmt.Errorf("writing %s: %w", path, err)}
	}
	if err := out.Close(); err != nil {
		return &ProcessingError{Item: item, Err: fmt.Errorf("closing %s: %w", path, err)}
	}
	return nil
}

// distribute copies classified files from scratch into root. Files land by
// base name, so same-named files from different subdirectories overwrite
// each other in walk order. Individual copy failures are recorded, not
// returned.
func distribute(scratch, root string, res *Result) error {
	for _, dir := range []string{DepotCacheDir(root), PluginDir(root)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped like unreadable files.
			res.Skipped = append(res.Skipped, fsutil.Skipped{Src: path, Err: err})
			log.Warn("install: walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		destDir := destination(root, Classify(d.Name()))
		if destDir == "" {
			return nil
		}
		dst := filepath.Join(destDir, d.Name())
		if err := fsutil.CopyFile(path, dst); err != nil {
			res.Skipped = append(res.Skipped, fsutil.Skipped{Src: path, Dst: dst, Err: err})
			log.Warn("install: %v", err)
			return nil
		}
		res.Copied++
		return nil
	})
}

// validateItem rejects names that cannot serve as a cache subpath.
func validateItem(item string) error {
	switch {
	case item == "":
		return errors.New("empty item name")
	case !strings.HasSuffix(strings.ToLower(item), archive.Extension):
		return fmt.Errorf("item %q is not a %s archive", item, archive.Extension)
	case strings.ContainsAny(item, `/\`):
		return fmt.Errorf("item %q is not a plain file name", item)
	}
	// The scratch dir must be a child of the cache dir: ".zip" and "..zip"
	// would name the cache dir itself, "...zip" its parent.
	switch ScratchName(item) {
	case "", ".", "..":
		return fmt.Errorf("item %q does not name a scratch directory", item)
	}
	return nil
}
