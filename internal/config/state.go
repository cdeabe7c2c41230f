// ABOUTME: Persisted application state: user settings plus installed-item history
// ABOUTME: JSON file with default merge on load and atomic temp+rename on save

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/luulek/depotfetch/internal/log"
)

// Settings holds the user preferences edited in the settings dialog.
// It is passed by value into every operation that reads it.
type Settings struct {
	SteamPath    string `json:"steam_path"`
	DarkTheme    bool   `json:"dark_theme"`
	DeleteAfter  bool   `json:"delete_after"`
	WinNotify    bool   `json:"win_notify"`
	RestartSteam bool   `json:"restart_steam"`
}

// State is the full content of the state file.
type State struct {
	Settings Settings `json:"settings"`
	Added    []string `json:"added"`
}

// DefaultSettings returns the settings used when the state file lacks a key.
func DefaultSettings() Settings {
	return Settings{DarkTheme: true}
}

// DefaultState returns an empty history with default settings.
func DefaultState() *State {
	return &State{
		Settings: DefaultSettings(),
		Added:    []string{},
	}
}

// LoadState reads the state file at path. A missing file yields the default
// state; an unreadable or malformed one is logged and also yields the
// default. Keys absent from the file keep their default values.
func LoadState(path string) *State {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultState()
	}
	if err != nil {
		log.Warn("reading state %s: %v", path, err)
		return DefaultState()
	}

	// Unmarshal onto a pre-filled value so absent keys keep their defaults.
	st := DefaultState()
	if err := json.Unmarshal(data, st); err != nil {
		log.Warn("parsing state %s: %v", path, err)
		return DefaultState()
	}
	if st.Added == nil {
		st.Added = []string{}
	}
	return st
}

// saveMu keeps concurrent saves from interleaving.
var saveMu sync.Mutex

// SaveState writes the state to path atomically. Safe for concurrent use.
func SaveState(path string, st *State) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp state: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp state: %w", err)
	}
	return nil
}

// AddHistory appends item names to the installed history. Duplicates are
// kept; the list is a log, not a set.
func (s *State) AddHistory(items ...string) {
	s.Added = append(s.Added, items...)
}
