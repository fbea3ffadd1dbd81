package documents

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"typegate/src/internal/errors"
)

func TestOverlaySupersedesDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(path, []byte("const a = 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore()

	content, err := store.Content(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "const a = 1;" {
		t.Errorf("disk content = %q", content)
	}

	store.SetOverlay(path, "const a = 2;")
	content, err = store.Content(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "const a = 2;" {
		t.Errorf("overlay content = %q", content)
	}
}

func TestVersionIncrementsPerWrite(t *testing.T) {
	store := NewStore()
	path := "/p/src/a.ts"

	if got := store.Version(path); got != "0" {
		t.Errorf("initial version = %q, want 0", got)
	}

	store.SetOverlay(path, "one")
	if got := store.Version(path); got != "1" {
		t.Errorf("after first write = %q, want 1", got)
	}

	store.SetOverlay(path, "two")
	store.SetOverlay(path, "two") // same content still bumps
	if got := store.Version(path); got != "3" {
		t.Errorf("after third write = %q, want 3", got)
	}
}

func TestContentMissingFile(t *testing.T) {
	store := NewStore()
	_, err := store.Content(filepath.Join(t.TempDir(), "missing.ts"))
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestOverlayForFileWithoutDiskBacking(t *testing.T) {
	store := NewStore()
	path := "/p/src/scratch.ts"

	store.SetOverlay(path, "let x = 1;")
	content, err := store.Content(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "let x = 1;" {
		t.Errorf("content = %q", content)
	}
}

func TestOverlaidPathsAndClear(t *testing.T) {
	store := NewStore()
	store.SetOverlay("/p/a.ts", "a")
	store.SetOverlay("/p/b.ts", "b")

	paths := store.OverlaidPaths()
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "/p/a.ts" || paths[1] != "/p/b.ts" {
		t.Errorf("paths = %v", paths)
	}

	store.Clear()
	if store.HasOverlay("/p/a.ts") {
		t.Error("overlay survived Clear")
	}
	if got := store.Version("/p/a.ts"); got != "0" {
		t.Errorf("version after Clear = %q, want 0", got)
	}
}
