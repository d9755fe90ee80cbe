package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/romsavior/romsavior/internal/model"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not runnable on windows")
	}
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRun_StreamsMergedOutput(t *testing.T) {
	path := writeScript(t, "echo out1\necho err1 1>&2\nprintf 'cr1\\rcr2\\n'\n")

	var lines []string
	err := Run(context.Background(), path, nil, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	seen := map[string]bool{}
	for _, l := range lines {
		seen[l] = true
	}
	for _, want := range []string{"out1", "err1", "cr1", "cr2"} {
		if !seen[want] {
			t.Errorf("missing line %q in %v", want, lines)
		}
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	path := writeScript(t, "echo partial\nexit 7\n")

	err := Run(context.Background(), path, nil, nil)
	var toolErr *model.ToolExecutionError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Run error = %v, expected ToolExecutionError", err)
	}
	if toolErr.ExitCode != 7 {
		t.Errorf("ExitCode = %d, expected 7", toolErr.ExitCode)
	}
	if toolErr.Tool != "tool" {
		t.Errorf("Tool = %q, expected base name of the executable", toolErr.Tool)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "absent"), nil, nil)
	if err == nil {
		t.Fatal("Run succeeded for a missing executable")
	}
	var toolErr *model.ToolExecutionError
	if errors.As(err, &toolErr) {
		t.Error("start failure must not be reported as a tool exit")
	}
}
