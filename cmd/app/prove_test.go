package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

// runProve runs the prove subcommand against an absent config file and
// returns its output and exit status.
func runProve(t *testing.T, args ...string) (string, int) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCommand()
	root.Writer = &out
	root.ErrWriter = &bytes.Buffer{}

	argv := append([]string{"modalk", "--config", filepath.Join(t.TempDir(), "none.yaml"), "prove"}, args...)
	err := root.Run(context.Background(), argv)

	code := exitValid
	if err != nil {
		var ec cli.ExitCoder
		if !errors.As(err, &ec) {
			t.Fatalf("run %v: %v", args, err)
		}
		code = ec.ExitCode()
	}
	return out.String(), code
}

func TestProve_ExitStatus(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"valid", []string{"p->p"}, exitValid},
		{"invalid", []string{"<>p&<>-p"}, exitInvalid},
		{"unrecognized", []string{"p", "&"}, exitUnrecognized},
		{"bad successors", []string{"--successors", "bogus", "p"}, exitUnrecognized},
		{"missing formula", nil, exitUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := runProve(t, tt.args...)
			if code != tt.want {
				t.Errorf("exit = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestProve_Header(t *testing.T) {
	out, code := runProve(t, "p->p")
	if code != exitValid {
		t.Fatalf("exit = %d, want %d", code, exitValid)
	}
	for _, line := range []string{
		"Given: p→p\n",
		"...normalized to: ¬p∨p\n",
		"starting with:",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
	if !strings.HasPrefix(out, "Given: ") {
		t.Errorf("output should open with the given formula:\n%s", out)
	}
}

func TestProve_ASCII(t *testing.T) {
	out, code := runProve(t, "--ascii", "q->(p->q)")
	if code != exitValid {
		t.Fatalf("exit = %d, want %d", code, exitValid)
	}
	if !strings.Contains(out, "=>") {
		t.Errorf("ascii output should use =>:\n%s", out)
	}
	for _, sym := range []string{"⇒", "→", "¬", "∨"} {
		if strings.Contains(out, sym) {
			t.Errorf("ascii output contains %q:\n%s", sym, out)
		}
	}
}

func TestProve_InvalidPrintsModel(t *testing.T) {
	out, code := runProve(t, "--dot", "<>p&<>-p")
	if code != exitInvalid {
		t.Fatalf("exit = %d, want %d", code, exitInvalid)
	}
	if !strings.Contains(out, "Model:") {
		t.Errorf("invalid output should carry a model:\n%s", out)
	}
	if !strings.Contains(out, "digraph") {
		t.Errorf("--dot output should carry a DOT graph:\n%s", out)
	}
}

func TestVerdictStyle_NotATerminal(t *testing.T) {
	if verdictStyle(&bytes.Buffer{}) != nil {
		t.Error("buffer should not be styled")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if verdictStyle(f) != nil {
		t.Error("regular file should not be styled")
	}
}
