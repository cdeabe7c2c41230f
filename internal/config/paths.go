// ABOUTME: Standard filesystem paths for depotfetch state, cache and overlay assets
// ABOUTME: Everything lives under one home directory (flag, env var, or working dir)

package config

import (
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the home directory when no --home flag is given.
const HomeEnvVar = "DEPOTFETCH_HOME"

const (
	cacheDirName      = "DownloadCache"
	filesDirName      = "Files"
	overlayDirName    = "OnlineFix"
	stateFileName     = "app_state.json"
	endpointsFileName = "endpoints.yaml"
	logFileName       = "depotfetch.log"
	notifyPictureName = "NotificationPicture.png"
)

// Home resolves the application home directory. Precedence: override
// (the --home flag), then $DEPOTFETCH_HOME, then the working directory.
func Home(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(HomeEnvVar); env != "" {
		return env
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// CacheDir returns the scratch directory for downloads and extractions.
func CacheDir(home string) string {
	return filepath.Join(home, cacheDirName)
}

// FilesDir returns the bundled assets directory.
func FilesDir(home string) string {
	return filepath.Join(home, filesDirName)
}

// OverlayDir returns the online-fix overlay source directory.
func OverlayDir(home string) string {
	return filepath.Join(FilesDir(home), overlayDirName)
}

// NotificationPicture returns the icon shown in desktop notifications.
func NotificationPicture(home string) string {
	return filepath.Join(FilesDir(home), notifyPictureName)
}

// StateFile returns the path to the persisted settings and history.
func StateFile(home string) string {
	return filepath.Join(home, stateFileName)
}

// EndpointsFile returns the path to the optional endpoints override file.
func EndpointsFile(home string) string {
	return filepath.Join(home, endpointsFileName)
}

// LogFile returns the path of the TUI session log.
func LogFile(home string) string {
	return filepath.Join(home, logFileName)
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
