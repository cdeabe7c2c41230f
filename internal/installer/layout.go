// ABOUTME: Installation root layout and extracted-file classification
// ABOUTME: Manifests go to config/depotcache, plugin scripts to config/stplug-in

package installer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/luulek/depotfetch/internal/archive"
)

const (
	// MainExecutable must exist directly under a valid installation root.
	MainExecutable = "steam.exe"

	// ManifestSuffix marks depot manifests.
	ManifestSuffix = ".manifest"
	// ScriptSuffix marks plugin scripts.
	ScriptSuffix = ".lua"
)

// Kind classifies a file found in an extracted archive.
type Kind int

const (
	KindOther Kind = iota
	KindManifest
	KindPluginScript
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindPluginScript:
		return "plugin-script"
	default:
		return "other"
	}
}

// Classify tags a file name by suffix. Matching is case-sensitive.
func Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, ManifestSuffix):
		return KindManifest
	case strings.HasSuffix(name, ScriptSuffix):
		return KindPluginScript
	default:
		return KindOther
	}
}

// DepotCacheDir returns where manifests are installed under root.
func DepotCacheDir(root string) string {
	return filepath.Join(root, "config", "depotcache")
}

// PluginDir returns where plugin scripts are installed under root.
func PluginDir(root string) string {
	return filepath.Join(root, "config", "stplug-in")
}

// destination returns the directory a file of kind k is copied into, or ""
// when the kind is not installed.
func destination(root string, k Kind) string {
	switch k {
	case KindManifest:
		return DepotCacheDir(root)
	case KindPluginScript:
		return PluginDir(root)
	default:
		return ""
	}
}

// ValidateRoot checks that root is non-empty and holds the main executable.
func ValidateRoot(root string) error {
	if root == "" {
		return ErrInvalidInstallationRoot
	}
	info, err := os.Stat(filepath.Join(root, MainExecutable))
	if err != nil || info.IsDir() {
		return ErrInvalidInstallationRoot
	}
	return nil
}

// ScratchName strips the archive extension (any letter case) from item.
func ScratchName(item string) string {
	if strings.HasSuffix(strings.ToLower(item), archive.Extension) {
		return item[:len(item)-len(archive.Extension)]
	}
	return item
}
