//go:build unix

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// echoNameEditor prints the variable name embedded in a vim command back as
// a JSON string, or fails for names starting with "fail".
const echoNameEditor = `for a in "$@"; do
  case "$a" in
    *"call writefile"*) n=${a#*", '"}; n=${n%%"'"*} ;;
  esac
done
case "$n" in
  fail*) echo "E121: Undefined variable: $n" >&2; exit 2 ;;
esac
printf '"%s"' "$n"`

func fakeEditor(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vim")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write fake editor: %v", err)
	}
	return path
}

// testEnv is a hermetic environment with an empty HOME.
func testEnv(t *testing.T, extra map[string]string) func(string) (string, bool) {
	env := map[string]string{"HOME": t.TempDir()}
	for k, v := range extra {
		env[k] = v
	}
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func runCLI(t *testing.T, env func(string) (string, bool), args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, env, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_SingleVariable(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)

	code, out, errOut := runCLI(t, testEnv(t, nil), "-dialect", "vim", "-vim", editor, "mapleader")

	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "\"mapleader\"\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_MultipleVariables(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)

	code, out, errOut := runCLI(t, testEnv(t, nil),
		"-dialect", "vim", "-vim", editor, "-format", "text", "a", "b:b", "c")

	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "g:a=a\nb:b=b\ng:c=c\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRun_MaxEditorsSerializesLoads(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)
	names := []string{"a", "b", "c", "d", "e", "f"}

	args := append([]string{"-dialect", "vim", "-vim", editor, "-format", "text", "-max-editors", "1"}, names...)
	code, out, errOut := runCLI(t, testEnv(t, nil), args...)

	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "g:a=a\ng:b=b\ng:c=c\ng:d=d\ng:e=e\ng:f=f\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRun_SettingsFromEnvironment(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)
	env := testEnv(t, map[string]string{
		"VIMVAR_DIALECT": "vim",
		"VIMVAR_VIM":     editor,
		"VIMVAR_FORMAT":  "yaml",
	})

	code, out, errOut := runCLI(t, env, "x")

	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "x\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_SettingsFile(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)
	settings := filepath.Join(t.TempDir(), "config.toml")
	content := "dialect = \"vim\"\nformat = \"text\"\n[executables]\nvim = \"" + editor + "\"\n"
	if err := os.WriteFile(settings, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, testEnv(t, nil), "-settings", settings, "-format", "json", "x")

	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "\"x\"\n" {
		t.Errorf("flag should override file format, stdout = %q", out)
	}
}

func TestRun_LoadFailure(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)

	code, out, errOut := runCLI(t, testEnv(t, nil), "-dialect", "vim", "-vim", editor, "ok", "failing")

	if code != exitLoad {
		t.Fatalf("exit code %d, want %d", code, exitLoad)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
	if !strings.Contains(errOut, "E121") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRun_MustExist(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)
	missing := filepath.Join(t.TempDir(), "missing.vim")

	code, _, errOut := runCLI(t, testEnv(t, nil),
		"-dialect", "vim", "-vim", editor, "-config", missing, "-must-exist", "x")

	if code != exitLoad {
		t.Fatalf("exit code %d, want %d", code, exitLoad)
	}
	if !strings.Contains(errOut, "config file not found") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no names", []string{"-dialect", "vim"}},
		{"unknown flag", []string{"-bogus", "x"}},
		{"bad format", []string{"-format", "xml", "x"}},
		{"bad dialect", []string{"-dialect", "emacs", "x"}},
		{"bad scope prefix", []string{"-dialect", "vim", "l:x"}},
		{"missing settings file", []string{"-settings", "/nonexistent/vimvar.toml", "x"}},
		{"negative max editors", []string{"-dialect", "vim", "-max-editors", "-1", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, testEnv(t, nil), tt.args...)
			if code != exitUsage {
				t.Errorf("exit code %d, want %d", code, exitUsage)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, testEnv(t, nil), "-version")
	if code != exitOK || !strings.HasPrefix(out, "vimvar dev\n") {
		t.Errorf("code %d, stdout %q", code, out)
	}
}

func TestRun_Paths(t *testing.T) {
	home := t.TempDir()
	vimrc := filepath.Join(home, ".vimrc")
	if err := os.WriteFile(vimrc, nil, 0644); err != nil {
		t.Fatal(err)
	}
	env := func(k string) (string, bool) {
		if k == "HOME" {
			return home, true
		}
		return "", false
	}

	code, out, _ := runCLI(t, env, "-paths", "-dialect", "vim")

	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	want := "vim:\n  * " + vimrc + "\n    " + filepath.Join(home, ".vim", "vimrc") + "\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRun_Watch(t *testing.T) {
	editor := fakeEditor(t, echoNameEditor)
	cfg := filepath.Join(t.TempDir(), "vimrc")
	if err := os.WriteFile(cfg, []byte("let g:x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-dialect", "vim", "-vim", editor, "-config", cfg, "-watch", "x"},
			testEnv(t, nil), &stdout, &stderr)
	}()

	waitFor(t, "first print", func() bool { return strings.Count(stdout.String(), "\"x\"") == 1 })

	if err := os.WriteFile(cfg, []byte("let g:x = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reprint", func() bool { return strings.Count(stdout.String(), "\"x\"") == 2 })

	cancel()
	select {
	case code := <-done:
		if code != exitOK {
			t.Errorf("exit code %d, stderr: %s", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestParseNames(t *testing.T) {
	a := &app{}
	vars, err := a.parseNames([]string{"plain", "b:buf", "t:tab", "v:version", "g:"})
	if err != nil {
		t.Fatalf("parseNames failed: %v", err)
	}

	var got []string
	for _, v := range vars {
		got = append(got, v.String())
	}
	want := []string{"g:plain", "b:buf", "t:tab", "v:version", "g:g:"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("got %v, want %v", got, want)
	}
}
