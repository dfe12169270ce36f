package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newWatcher(t *testing.T, files ...string) *Watcher {
	t.Helper()
	w, err := New(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	for _, f := range files {
		if err := w.Add(f); err != nil {
			t.Fatalf("Add(%s) failed: %v", f, err)
		}
	}
	return w
}

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func expectQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case c := <-w.Changes():
		t.Errorf("unexpected change %v", c.Paths)
	case <-time.After(d):
	}
}

func TestWatcher_WriteIsDebounced(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "init.vim")
	writeFile(t, cfg, "let g:a = 1\n")
	w := newWatcher(t, cfg)

	for i := 0; i < 5; i++ {
		writeFile(t, cfg, "let g:a = 2\n")
	}

	c := waitChange(t, w)
	abs, _ := filepath.Abs(cfg)
	if len(c.Paths) != 1 || c.Paths[0] != abs {
		t.Errorf("Paths = %v, want [%s]", c.Paths, abs)
	}
	expectQuiet(t, w, 200*time.Millisecond)
}

func TestWatcher_RenameOverFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "init.lua")
	writeFile(t, cfg, "vim.g.a = 1\n")
	w := newWatcher(t, cfg)

	tmp := filepath.Join(dir, "init.lua.swp")
	writeFile(t, tmp, "vim.g.a = 2\n")
	if err := os.Rename(tmp, cfg); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	waitChange(t, w)

	// The watch must survive the replacement.
	writeFile(t, cfg, "vim.g.a = 3\n")
	waitChange(t, w)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "vimrc")
	writeFile(t, cfg, "")
	w := newWatcher(t, cfg)

	writeFile(t, filepath.Join(dir, "other"), "x")

	expectQuiet(t, w, 250*time.Millisecond)
}

func TestWatcher_AddMissing(t *testing.T) {
	w := newWatcher(t)

	err := w.Add(filepath.Join(t.TempDir(), "missing.vim"))
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("expected ErrPathNotExist, got %v", err)
	}
}

func TestWatcher_Files(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "b.vim")
	b := filepath.Join(dir, "a.vim")
	writeFile(t, a, "")
	writeFile(t, b, "")
	w := newWatcher(t, a, b)

	files := w.Files()
	if len(files) != 2 || files[0] != b || files[1] != a {
		t.Errorf("Files() = %v", files)
	}
}

func TestWatcher_Close(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "vimrc")
	writeFile(t, cfg, "")

	w, err := New(0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := w.Add(cfg); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("expected Changes to be closed")
	}
}
