package util

import (
	"errors"
	"testing"
)

func TestOpenWith_FallsBackToNextCommand(t *testing.T) {
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	var tried []string
	startCommand = func(name string, args ...string) error {
		tried = append(tried, name)
		if name == "rundll32" {
			return errors.New("not found")
		}
		if len(args) != 1 || args[0] != "http://localhost:1" {
			t.Fatalf("unexpected args for %s: %v", name, args)
		}
		return nil
	}

	if err := openWith("windows", "http://localhost:1"); err != nil {
		t.Fatalf("openWith failed: %v", err)
	}
	if len(tried) != 2 || tried[1] != "explorer" {
		t.Fatalf("tried=%v", tried)
	}
}

func TestOpenWith_AllFail(t *testing.T) {
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	startCommand = func(name string, args ...string) error {
		return errors.New(name + " missing")
	}

	if err := openWith("plan9", "http://localhost:1"); err == nil {
		t.Fatal("expected error when no browser can be started")
	}
}
