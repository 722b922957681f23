package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func assertExists(t *testing.T, dir, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
		t.Errorf("expected %s to exist: %v", rel, err)
	}
}

func TestOrganizeDirectoryDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.PNG", "c.unknownext")

	result, err := OrganizeDirectory(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Moved != 2 || result.Skipped != 1 {
		t.Errorf("moved = %d, skipped = %d, want 2/1", result.Moved, result.Skipped)
	}
	if len(result.Details) != 2 {
		t.Fatalf("details = %d entries", len(result.Details))
	}

	// Dry run touches nothing.
	assertExists(t, dir, "a.pdf")
	assertExists(t, dir, "b.PNG")
}

func TestOrganizeDirectoryMoves(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.png")

	result, err := OrganizeDirectory(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Moved != 2 {
		t.Errorf("moved = %d, want 2", result.Moved)
	}
	assertExists(t, dir, "Documents/a.pdf")
	assertExists(t, dir, "Images/b.png")
}

func TestOrganizeDirectorySkipsSubdirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "keep.pdf.d"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, dir, "a.pdf")

	result, err := OrganizeDirectory(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Moved != 1 {
		t.Errorf("moved = %d, want 1", result.Moved)
	}
	assertExists(t, dir, "keep.pdf.d")
}

func TestOrganizeDirectoryMissingPath(t *testing.T) {
	t.Parallel()

	if _, err := OrganizeDirectory(filepath.Join(t.TempDir(), "nope"), true); err == nil {
		t.Error("expected error for missing directory")
	}
}
