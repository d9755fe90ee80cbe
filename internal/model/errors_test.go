package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolExecutionError_Message(t *testing.T) {
	err := &ToolExecutionError{Tool: "aria2c", ExitCode: 3}
	want := "aria2c exited with code 3"
	if err.Error() != want {
		t.Errorf("Error() = %q, expected %q", err.Error(), want)
	}
}

func TestErrors_As(t *testing.T) {
	wrapped := fmt.Errorf("download failed: %w", &NetworkError{URL: "https://example.com/a.zip", Err: errors.New("timeout")})

	var netErr *NetworkError
	if !errors.As(wrapped, &netErr) {
		t.Fatal("errors.As failed to find NetworkError in wrapped chain")
	}
	if netErr.URL != "https://example.com/a.zip" {
		t.Errorf("URL = %q", netErr.URL)
	}

	var toolErr *ToolExecutionError
	if errors.As(wrapped, &toolErr) {
		t.Error("errors.As matched ToolExecutionError on a NetworkError chain")
	}
}

func TestFilesystemError_Unwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := &FilesystemError{Op: "mkdir", Path: "/tmp/x", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed to unwrap FilesystemError")
	}
}
