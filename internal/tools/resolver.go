package tools

// Package tools locates the external executables the pipeline drives.
// Resolution runs once at startup; the resulting Toolset is passed by
// value into the worker pools. Absence of a tool is a capability flag,
// never an error: callers pick a fallback strategy.

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Tool names as resolved on the host
const (
	ToolAria2c = "aria2c"
	ToolWget   = "wget"
	ToolUnzip  = "unzip"
	Tool7z     = "7z"
	ToolChdman = "chdman"
)

// Toolset holds the resolved paths of the external tools. An empty
// string means the tool is absent.
type Toolset struct {
	Aria2c   string
	Wget     string
	Unzip    string
	SevenZip string
	Chdman   string
}

// Resolve scans the given directories, in order, for each known tool
// and returns the first match per tool.
func Resolve(dirs []string) Toolset {
	return Toolset{
		Aria2c:   Locate(ToolAria2c, dirs),
		Wget:     Locate(ToolWget, dirs),
		Unzip:    Locate(ToolUnzip, dirs),
		SevenZip: Locate(Tool7z, dirs),
		Chdman:   Locate(ToolChdman, dirs),
	}
}

// ResolveFromPath resolves against the process PATH.
func ResolveFromPath() Toolset {
	return Resolve(filepath.SplitList(os.Getenv("PATH")))
}

// Locate searches dirs for an executable named name, trying
// platform-appropriate suffixes. Returns the first present, executable
// match, or "" when absent.
func Locate(name string, dirs []string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, ext := range executableSuffixes() {
			candidate := filepath.Join(dir, name+ext)
			if isExecutable(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// Extractor returns the resolved archive extraction tool, preferring
// the dedicated unzip over the general-purpose 7z, and whether the
// returned path is the 7z-style tool (which takes a different argument
// form).
func (t Toolset) Extractor() (path string, sevenZip bool) {
	if t.Unzip != "" {
		return t.Unzip, false
	}
	if t.SevenZip != "" {
		return t.SevenZip, strings.HasPrefix(strings.ToLower(filepath.Base(t.SevenZip)), "7z")
	}
	return "", false
}

func executableSuffixes() []string {
	if runtime.GOOS == "windows" {
		return []string{"", ".exe", ".bat", ".cmd"}
	}
	return []string{""}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
