// ABOUTME: Tests for zip extraction
// ABOUTME: Builds archives in-process and checks layout, overwrite, and traversal rejection

package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func buildZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZip_Layout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "480.zip")
	buildZip(t, src, map[string]string{
		"480.lua":             "addappid(480)",
		"depots/481.manifest": "manifest-bytes",
		"readme/":             "",
	})

	dest := filepath.Join(dir, "480")
	if err := ExtractZip(src, dest); err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "depots", "481.manifest"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "manifest-bytes" {
		t.Errorf("manifest = %q; want %q", got, "manifest-bytes")
	}
	if info, err := os.Stat(filepath.Join(dest, "readme")); err != nil || !info.IsDir() {
		t.Errorf("directory entry not created: %v", err)
	}
}

func TestExtractZip_OverwritesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.zip")
	buildZip(t, src, map[string]string{"a.lua": "new"})

	dest := filepath.Join(dir, "a")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "a.lua"), []byte("old and longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ExtractZip(src, dest); err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dest, "a.lua"))
	if string(got) != "new" {
		t.Errorf("a.lua = %q; want %q", got, "new")
	}
}

func TestExtractZip_RejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	buildZip(t, src, map[string]string{"../../escape.lua": "x"})

	if err := ExtractZip(src, filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.lua")); !os.IsNotExist(err) {
		t.Error("traversal entry was written")
	}
}

func TestExtractZip_NotAnArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(src, []byte("<html>rate limited</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ExtractZip(src, filepath.Join(dir, "broken")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestEntryPath(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(string(os.PathSeparator)+"cache", "480")
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"480.lua", false},
		{"sub/481.manifest", false},
		{`win\style\482.lua`, false},
		{"../480.lua", true},
		{"sub/../../outside", true},
	}
	for _, tt := range tests {
		_, err := entryPath(dest, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("entryPath(%q) err = %v; wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
