//go:build unix

package process

import (
	"errors"
	"os/exec"
	"testing"
	"time"
)

// waitCount polls until s tracks want processes or the deadline passes.
func waitCount(t *testing.T, s *Supervisor, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Count() != want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.Count(); got != want {
		t.Fatalf("tracking %d processes, want %d", got, want)
	}
}

func TestSupervisor_TracksUntilExit(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	a, err := s.Start("a", exec.Command("sleep", "0.1"))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	b, err := s.Start("b", exec.Command("sleep", "0.1"))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
	if len(s.List()) != 2 {
		t.Errorf("List has %d entries, want 2", len(s.List()))
	}

	waitCount(t, s, 0)
}

func TestSupervisor_MaxProcesses(t *testing.T) {
	s := NewSupervisor(WithMaxProcesses(1))
	defer s.Shutdown(time.Second)

	first, err := s.Start("first", exec.Command("sleep", "0.2"))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = s.Start("second", exec.Command("true"))
	if !errors.Is(err, ErrProcessLimit) {
		t.Fatalf("second Start = %v, want ErrProcessLimit", err)
	}

	<-first.Done()
	waitCount(t, s, 0)

	third, err := s.Start("third", exec.Command("true"))
	if err != nil {
		t.Fatalf("Start after a slot freed up: %v", err)
	}
	<-third.Done()
}

func TestSupervisor_ExitCallback(t *testing.T) {
	type exit struct {
		name  string
		code  int
		state State
	}
	exits := make(chan exit, 1)

	s := NewSupervisor(WithProcessExitCallback(func(p *Process) {
		exits <- exit{p.Name, p.ExitCode(), p.State()}
	}))
	defer s.Shutdown(time.Second)

	if _, err := s.Start("nvim", exec.Command("sh", "-c", "exit 3")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case got := <-exits:
		if got != (exit{"nvim", 3, StateExited}) {
			t.Errorf("callback saw %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("exit callback was not called")
	}
}

func TestSupervisor_ExitCallbackPanic(t *testing.T) {
	s := NewSupervisor(WithProcessExitCallback(func(*Process) { panic("boom") }))
	defer s.Shutdown(time.Second)

	if _, err := s.Start("editor", exec.Command("true")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitCount(t, s, 0)
}

func TestSupervisor_ShutdownEscalates(t *testing.T) {
	s := NewSupervisor()

	cmd := exec.Command("sh", "-c", "trap '' TERM; sleep 10")
	setProcessGroup(cmd)
	p, err := s.Start("stubborn", cmd)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	s.Shutdown(100 * time.Millisecond)

	if p.State() != StateKilled {
		t.Errorf("state = %v, want killed", p.State())
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Shutdown did not escalate to SIGKILL")
	}
	if s.Count() != 0 {
		t.Errorf("tracking %d processes after Shutdown", s.Count())
	}
	if _, err := s.Start("late", exec.Command("true")); err != ErrSupervisorShutdown {
		t.Errorf("Start after Shutdown = %v, want ErrSupervisorShutdown", err)
	}
	s.Shutdown(time.Second)
}
