package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimvar/internal/editor"
)

type testEnv struct {
	xdg  string
	home string
	vim  string
	goos string
}

func (e testEnv) XDGConfigHome() (string, bool) { return e.xdg, e.xdg != "" }
func (e testEnv) Home() string                  { return e.home }
func (e testEnv) VimEnv() (string, bool)        { return e.vim, e.vim != "" }
func (e testEnv) GOOS() string                  { return e.goos }

// newTestEnv returns an environment whose directories exist but are empty.
func newTestEnv(t *testing.T, goos string) testEnv {
	t.Helper()
	return testEnv{
		xdg:  t.TempDir(),
		home: t.TempDir(),
		vim:  t.TempDir(),
		goos: goos,
	}
}

func createFile(t *testing.T, root string, components ...string) string {
	t.Helper()
	if len(components) == 0 {
		t.Fatal("missing components")
	}
	full := filepath.Join(append([]string{root}, components...)...)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(full, nil, 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	return full
}

func TestFind_Unix(t *testing.T) {
	tests := []struct {
		name       string
		dialect    editor.Dialect
		root       func(testEnv) string
		components []string
	}{
		{"xdg init.lua", editor.NeoVim, func(e testEnv) string { return e.xdg }, []string{"nvim", "init.lua"}},
		{"xdg init.vim", editor.NeoVim, func(e testEnv) string { return e.xdg }, []string{"nvim", "init.vim"}},
		{"home config init.lua", editor.NeoVim, func(e testEnv) string { return e.home }, []string{".config", "nvim", "init.lua"}},
		{"home config init.vim", editor.NeoVim, func(e testEnv) string { return e.home }, []string{".config", "nvim", "init.vim"}},
		{"home vimrc", editor.Vim, func(e testEnv) string { return e.home }, []string{".vimrc"}},
		{"home vim dir vimrc", editor.Vim, func(e testEnv) string { return e.home }, []string{".vim", "vimrc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "linux")
			want := createFile(t, tt.root(env), tt.components...)

			got, ok := New(WithEnv(env)).Find(tt.dialect)
			if !ok {
				t.Fatalf("expected to find %s", want)
			}
			if got != want {
				t.Errorf("Find() = %q, want %q", got, want)
			}
		})
	}
}

func TestFind_Windows(t *testing.T) {
	tests := []struct {
		name       string
		dialect    editor.Dialect
		root       func(testEnv) string
		components []string
	}{
		{"appdata init.lua", editor.NeoVim, func(e testEnv) string { return e.home }, []string{"AppData", "Local", "nvim", "init.lua"}},
		{"appdata init.vim", editor.NeoVim, func(e testEnv) string { return e.home }, []string{"AppData", "Local", "nvim", "init.vim"}},
		{"home _vimrc", editor.Vim, func(e testEnv) string { return e.home }, []string{"_vimrc"}},
		{"vimfiles vimrc", editor.Vim, func(e testEnv) string { return e.home }, []string{"vimfiles", "vimrc"}},
		{"$VIM _vimrc", editor.Vim, func(e testEnv) string { return e.vim }, []string{"_vimrc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "windows")
			want := createFile(t, tt.root(env), tt.components...)

			got, ok := New(WithEnv(env)).Find(tt.dialect)
			if !ok {
				t.Fatalf("expected to find %s", want)
			}
			if got != want {
				t.Errorf("Find() = %q, want %q", got, want)
			}
		})
	}
}

func TestFind_PrefersLuaOverVimscript(t *testing.T) {
	env := newTestEnv(t, "linux")
	createFile(t, env.xdg, "nvim", "init.vim")
	want := createFile(t, env.xdg, "nvim", "init.lua")
	createFile(t, env.home, ".config", "nvim", "init.lua")

	got, ok := New(WithEnv(env)).Find(editor.NeoVim)
	if !ok || got != want {
		t.Errorf("Find() = %q, %v; want %q", got, ok, want)
	}
}

func TestFind_NotFound(t *testing.T) {
	env := newTestEnv(t, "linux")
	loc := New(WithEnv(env))

	for _, d := range []editor.Dialect{editor.Vim, editor.NeoVim} {
		if got, ok := loc.Find(d); ok {
			t.Errorf("Find(%v) = %q, expected no config", d, got)
		}
	}
	if got, ok := loc.FindAny(); ok {
		t.Errorf("FindAny() = %q, expected no config", got)
	}
}

func TestFind_DialectsAreSeparate(t *testing.T) {
	env := newTestEnv(t, "linux")
	createFile(t, env.home, ".vimrc")

	loc := New(WithEnv(env))
	if got, ok := loc.Find(editor.NeoVim); ok {
		t.Errorf("neovim should not pick up %q", got)
	}
	if _, ok := loc.Find(editor.Vim); !ok {
		t.Error("vim should find ~/.vimrc")
	}
	if _, ok := loc.FindAny(); !ok {
		t.Error("FindAny should find ~/.vimrc")
	}
}

func TestCandidates(t *testing.T) {
	env := testEnv{xdg: "/xdg", home: "/home/u", goos: "linux"}
	loc := New(WithEnv(env))

	wantNvim := []string{
		filepath.Join("/xdg", "nvim", "init.lua"),
		filepath.Join("/xdg", "nvim", "init.vim"),
		filepath.Join("/home/u", ".config", "nvim", "init.lua"),
		filepath.Join("/home/u", ".config", "nvim", "init.vim"),
	}
	if diff := cmp.Diff(wantNvim, loc.Candidates(editor.NeoVim)); diff != "" {
		t.Errorf("neovim candidates mismatch (-want +got):\n%s", diff)
	}

	wantVim := []string{
		filepath.Join("/home/u", ".vimrc"),
		filepath.Join("/home/u", ".vim", "vimrc"),
	}
	if diff := cmp.Diff(wantVim, loc.Candidates(editor.Vim)); diff != "" {
		t.Errorf("vim candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates_UnsetXDG(t *testing.T) {
	env := testEnv{home: "/home/u", goos: "linux"}
	got := New(WithEnv(env)).Candidates(editor.NeoVim)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates without XDG, got %v", got)
	}
}

func TestCandidates_OtherPlatform(t *testing.T) {
	env := testEnv{xdg: "/xdg", home: "/home/u", goos: "plan9"}
	loc := New(WithEnv(env))

	if got := loc.Candidates(editor.NeoVim); len(got) != 2 {
		t.Errorf("expected only XDG candidates, got %v", got)
	}
	if got := loc.Candidates(editor.Vim); len(got) != 0 {
		t.Errorf("expected no vim candidates, got %v", got)
	}
}
