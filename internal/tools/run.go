package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"

	"github.com/romsavior/romsavior/internal/model"
)

// Run executes an external tool and streams its merged stdout/stderr to
// onLine, one line per call. Progress readouts that redraw with bare
// carriage returns are split the same as newline-terminated lines. A
// non-zero exit is reported as a ToolExecutionError carrying the exit
// code; onLine may be nil.
func Run(ctx context.Context, path string, args []string, onLine func(line string)) error {
	cmd := exec.CommandContext(ctx, path, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("start %s: %w", filepath.Base(path), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if onLine != nil {
				onLine(line)
			}
		}
	}()

	err := cmd.Wait()
	pw.Close()
	<-done

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &model.ToolExecutionError{
				Tool:     filepath.Base(path),
				ExitCode: exitErr.ExitCode(),
			}
		}
		return fmt.Errorf("run %s: %w", filepath.Base(path), err)
	}
	return nil
}

// splitByNewlineOrCR is a bufio.SplitFunc treating both \n and \r as
// line terminators, so in-place progress redraws surface as lines.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
