// ABOUTME: Tests for state persistence, endpoint overrides and path resolution
// ABOUTME: Uses temp directories for isolated file-based tests

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestLoadState_Missing(t *testing.T) {
	t.Parallel()

	st := LoadState(filepath.Join(t.TempDir(), "app_state.json"))

	if !reflect.DeepEqual(st, DefaultState()) {
		t.Errorf("LoadState = %+v; want default %+v", st, DefaultState())
	}
	if !st.Settings.DarkTheme {
		t.Error("default DarkTheme = false; want true")
	}
}

func TestLoadState_FillsMissingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_state.json")
	raw := `{"settings": {"steam_path": "C:/Steam", "delete_after": true}, "added": ["1.zip"]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	st := LoadState(path)

	want := Settings{SteamPath: "C:/Steam", DarkTheme: true, DeleteAfter: true}
	if st.Settings != want {
		t.Errorf("Settings = %+v; want %+v", st.Settings, want)
	}
	if !reflect.DeepEqual(st.Added, []string{"1.zip"}) {
		t.Errorf("Added = %v; want [1.zip]", st.Added)
	}
}

func TestLoadState_ExplicitFalseOverridesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_state.json")
	if err := os.WriteFile(path, []byte(`{"settings": {"dark_theme": false}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	st := LoadState(path)
	if st.Settings.DarkTheme {
		t.Error("DarkTheme = true; want false from file")
	}
	if st.Added == nil {
		t.Error("Added = nil; want empty slice")
	}
}

func TestLoadState_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_state.json")
	if err := os.WriteFile(path, []byte(`{"settings": {"steam_path": 42`), 0o644); err != nil {
		t.Fatal(err)
	}

	st := LoadState(path)
	if !reflect.DeepEqual(st, DefaultState()) {
		t.Errorf("LoadState = %+v; want default", st)
	}
}

func TestSaveState_RoundTripAndKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "app_state.json")
	st := DefaultState()
	st.Settings.SteamPath = "/games/steam"
	st.Settings.RestartSteam = true
	st.AddHistory("10.zip", "20.zip")

	if err := SaveState(path, st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if left, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp")); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Settings map[string]any `json:"settings"`
		Added    []string       `json:"added"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("state file is not JSON: %v", err)
	}
	for _, key := range []string{"steam_path", "dark_theme", "delete_after", "win_notify", "restart_steam"} {
		if _, ok := raw.Settings[key]; !ok {
			t.Errorf("settings missing key %q", key)
		}
	}

	got := LoadState(path)
	if !reflect.DeepEqual(got, st) {
		t.Errorf("round trip = %+v; want %+v", got, st)
	}
}

func TestSaveState_Concurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_state.json")
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := DefaultState()
			st.AddHistory(fmt.Sprintf("%d.zip", i))
			errs <- SaveState(path, st)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("SaveState: %v", err)
		}
	}
	if got := LoadState(path); len(got.Added) != 1 {
		t.Errorf("Added = %v; want one item from a single save", got.Added)
	}
	if left, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp")); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestAddHistory_KeepsDuplicates(t *testing.T) {
	t.Parallel()

	st := DefaultState()
	st.AddHistory("a.zip")
	st.AddHistory("a.zip", "b.zip")

	want := []string{"a.zip", "a.zip", "b.zip"}
	if !reflect.DeepEqual(st.Added, want) {
		t.Errorf("Added = %v; want %v", st.Added, want)
	}
}

func TestLoadEndpoints_MissingFile(t *testing.T) {
	t.Parallel()

	ep, err := LoadEndpoints(filepath.Join(t.TempDir(), "endpoints.yaml"))
	if err != nil {
		t.Fatalf("LoadEndpoints: %v", err)
	}
	if ep != DefaultEndpoints() {
		t.Errorf("endpoints = %+v; want defaults", ep)
	}
}

func TestLoadEndpoints_OverrideWithEnv(t *testing.T) {
	t.Setenv("DEPOTFETCH_TEST_MIRROR", "https://mirror.example")

	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	content := "raw_base_url: ${DEPOTFETCH_TEST_MIRROR}/raw/\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ep, err := LoadEndpoints(path)
	if err != nil {
		t.Fatalf("LoadEndpoints: %v", err)
	}
	if ep.RawBaseURL != "https://mirror.example/raw" {
		t.Errorf("RawBaseURL = %q; want %q", ep.RawBaseURL, "https://mirror.example/raw")
	}
	if ep.IndexURL != DefaultIndexURL {
		t.Errorf("IndexURL = %q; want default", ep.IndexURL)
	}
}

func TestLoadEndpoints_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(path, []byte("index_url: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadEndpoints(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestHome_Precedence(t *testing.T) {
	t.Setenv(HomeEnvVar, "/from/env")

	if got := Home("/from/flag"); got != "/from/flag" {
		t.Errorf("Home(flag) = %q; want /from/flag", got)
	}
	if got := Home(""); got != "/from/env" {
		t.Errorf("Home(\"\") = %q; want /from/env", got)
	}

	t.Setenv(HomeEnvVar, "")
	cwd, _ := os.Getwd()
	if got := Home(""); got != cwd {
		t.Errorf("Home(\"\") = %q; want cwd %q", got, cwd)
	}
}

func TestPaths(t *testing.T) {
	t.Parallel()

	home := "base"
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"cache", CacheDir(home), filepath.Join("base", "DownloadCache")},
		{"overlay", OverlayDir(home), filepath.Join("base", "Files", "OnlineFix")},
		{"state", StateFile(home), filepath.Join("base", "app_state.json")},
		{"endpoints", EndpointsFile(home), filepath.Join("base", "endpoints.yaml")},
		{"log", LogFile(home), filepath.Join("base", "depotfetch.log")},
		{"picture", NotificationPicture(home), filepath.Join("base", "Files", "NotificationPicture.png")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q; want %q", tt.name, tt.got, tt.want)
		}
	}
}
