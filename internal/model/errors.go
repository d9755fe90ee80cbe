package model

import "fmt"

// NetworkError reports a failed fetch or connection attempt.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ToolExecutionError reports an external tool that exited non-zero.
type ToolExecutionError struct {
	Tool     string
	ExitCode int
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// ToolNotFoundError reports a required external tool that could not be
// resolved. Download tools are never "required" (the streaming fallback
// covers their absence); extractors and converters are.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("required tool %q not found", e.Tool)
}

// FilesystemError reports a failed create/delete/move on local storage.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
