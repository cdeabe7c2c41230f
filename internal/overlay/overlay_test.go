// ABOUTME: Tests for the overlay applier on temporary game and overlay trees
// ABOUTME: Covers target validation, missing assets, merge layout, and idempotent re-runs

package overlay

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTree creates files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// snapshot maps every file under root to its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			out[filepath.ToSlash(rel)+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return out
}

func newOverlay(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"OnlineFix64.dll":          "fix",
		"plugins/steam_api64.dll":  "api",
		"Data/Managed/patched.dll": "patched",
		"Data/config.ini":          "cfg",
	})
	return src
}

func newGame(t *testing.T) string {
	t.Helper()
	game := t.TempDir()
	writeTree(t, game, map[string]string{
		Marker:                           "crash",
		"Game.exe":                       "game",
		"Game_Data/Managed/original.dll": "orig",
		"plugins/stale.dll":              "stale",
	})
	return game
}

func TestApply_CopiesAndMerges(t *testing.T) {
	t.Parallel()

	game := newGame(t)
	res, err := New(newOverlay(t)).Apply(game)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if res.DataDir != filepath.Join(game, "Game_Data") {
		t.Errorf("DataDir = %q; want Game_Data", res.DataDir)
	}
	got := snapshot(t, game)
	want := map[string]string{
		"./":                             "",
		Marker:                           "crash",
		"Game.exe":                       "game",
		"OnlineFix64.dll":                "fix",
		"plugins/":                       "",
		"plugins/steam_api64.dll":        "api",
		"Game_Data/":                     "",
		"Game_Data/config.ini":           "cfg",
		"Game_Data/Managed/":             "",
		"Game_Data/Managed/original.dll": "orig",
		"Game_Data/Managed/patched.dll":  "patched",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree = %v\nwant %v", got, want)
	}
	if _, err := os.Stat(filepath.Join(game, DataDirName)); !os.IsNotExist(err) {
		t.Errorf("reserved Data dir copied to top level (err = %v)", err)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %v; want none", res.Skipped)
	}
}

func TestApply_MergeFailureIsSkipped(t *testing.T) {
	t.Parallel()

	game := newGame(t)
	blocked := filepath.Join(game, "Game_Data", "config.ini")
	if err := os.MkdirAll(blocked, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := New(newOverlay(t)).Apply(game)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(game, "Game_Data", "Managed", "patched.dll"))
	if err != nil || string(data) != "patched" {
		t.Errorf("patched.dll = %q, %v; want %q", data, err, "patched")
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("Skipped = %v; want one entry", res.Skipped)
	}
	if got := res.Skipped[0]; got.Dst != blocked || got.Err == nil {
		t.Errorf("Skipped[0] = %+v; want %s with an error", got, blocked)
	}
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	game := newGame(t)
	a := New(newOverlay(t))
	if _, err := a.Apply(game); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	first := snapshot(t, game)
	if _, err := a.Apply(game); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second := snapshot(t, game); !reflect.DeepEqual(first, second) {
		t.Errorf("re-run changed tree:\nfirst  %v\nsecond %v", first, second)
	}
}

func TestApply_NoMarker(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	writeTree(t, game, map[string]string{"Game_Data/level0": "x", "Game.exe": "game"})
	before := snapshot(t, game)

	_, err := New(newOverlay(t)).Apply(game)
	if !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("err = %v; want ErrUnsupportedTarget", err)
	}
	if after := snapshot(t, game); !reflect.DeepEqual(before, after) {
		t.Errorf("target modified: %v -> %v", before, after)
	}
	if got := Message(err); !strings.HasPrefix(got, "This is not a unity game!") {
		t.Errorf("Message = %q", got)
	}
}

func TestApply_NoDataDir(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	writeTree(t, game, map[string]string{Marker: "crash", "datafile.bin": "not a dir"})

	_, err := New(newOverlay(t)).Apply(game)
	if !errors.Is(err, ErrUnsupportedTarget) {
		t.Errorf("err = %v; want ErrUnsupportedTarget", err)
	}
}

func TestApply_MissingAssets(t *testing.T) {
	t.Parallel()

	noData := t.TempDir()
	writeTree(t, noData, map[string]string{"OnlineFix64.dll": "fix"})

	tests := []struct {
		name   string
		source string
		msg    string
	}{
		{"no source", filepath.Join(t.TempDir(), "missing"), "OnlineFix folder missing from Files folder"},
		{"no data", noData, "OnlineFix/Data missing in Files/OnlineFix"},
	}
	for _, tt := range tests {
		game := newGame(t)
		before := snapshot(t, game)

		_, err := New(tt.source).Apply(game)
		if !errors.Is(err, ErrMissingOverlayAssets) {
			t.Errorf("%s: err = %v; want ErrMissingOverlayAssets", tt.name, err)
		}
		if got := Message(err); got != tt.msg {
			t.Errorf("%s: Message = %q; want %q", tt.name, got, tt.msg)
		}
		if after := snapshot(t, game); !reflect.DeepEqual(before, after) {
			t.Errorf("%s: target modified", tt.name)
		}
	}
}

func TestFindDataDir_LexicalOrder(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	for _, d := range []string{"b_Data", "A_DATA", "zdata"} {
		if err := os.Mkdir(filepath.Join(game, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	got, err := FindDataDir(game)
	if err != nil {
		t.Fatalf("FindDataDir: %v", err)
	}
	if want := filepath.Join(game, "A_DATA"); got != want {
		t.Errorf("FindDataDir = %q; want %q", got, want)
	}
}

func TestMessage_ApplyError(t *testing.T) {
	t.Parallel()

	err := &ApplyError{Err: errors.New("disk full")}
	if got := Message(err); got != "Online-Fix failed: disk full" {
		t.Errorf("Message = %q", got)
	}
}
