package vimvar

import (
	"errors"
	"fmt"
	"testing"
)

func TestVar_String(t *testing.T) {
	tests := []struct {
		v    Var
		want string
	}{
		{New(Vim, Global, "mapleader"), "g:mapleader"},
		{New(NeoVim, Buffer, "x"), "b:x"},
		{New(Vim, Window, "y"), "w:y"},
		{New(NeoVim, Tab, "z"), "t:z"},
		{New(Vim, VimScope, "version"), "v:version"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestVar_Accessors(t *testing.T) {
	v := New(NeoVim, Tab, "name")
	if v.Dialect() != NeoVim || v.Scope() != Tab || v.Name() != "name" {
		t.Errorf("unexpected accessors: %v %v %q", v.Dialect(), v.Scope(), v.Name())
	}
}

func TestKindOf(t *testing.T) {
	inner := &LoadError{Kind: KindDecode, Var: New(Vim, Global, "x"), Err: errors.New("bad")}
	wrapped := fmt.Errorf("outer: %w", inner)

	if KindOf(wrapped) != KindDecode {
		t.Errorf("KindOf(wrapped) = %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected KindUnknown for a plain error")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("expected KindUnknown for nil")
	}
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Kind: KindCast, Var: New(NeoVim, Global, "x"), Err: errors.New("boom")}
	if got, want := err.Error(), "load g:x (nvim): boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigNotFoundError(t *testing.T) {
	err := &ConfigNotFoundError{Path: "/x/init.lua"}
	if !errors.Is(err, ErrConfigNotFound) {
		t.Error("expected errors.Is ErrConfigNotFound")
	}
	if err.Error() != "config file not found: /x/init.lua" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindUnknown:        "unknown",
		KindSpawn:          "spawn",
		KindProcess:        "process",
		KindDecode:         "decode",
		KindCast:           "cast",
		KindConfigNotFound: "config not found",
		KindInvalidVar:     "invalid variable",
		KindCanceled:       "canceled",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestParse(t *testing.T) {
	d, err := ParseDialect("neovim")
	if err != nil || d != NeoVim {
		t.Errorf("ParseDialect = %v, %v", d, err)
	}
	s, err := ParseScope("w:")
	if err != nil || s != Window {
		t.Errorf("ParseScope = %v, %v", s, err)
	}
}
