package tools

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write executable: %v", err)
	}
	return path
}

func TestLocate_FindsFirstMatch(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, first, "chdman")
	writeExecutable(t, second, "chdman")

	got := Locate("chdman", []string{first, second})
	want := filepath.Join(first, "chdman")
	if got != want {
		t.Errorf("Locate = %q, expected first match %q", got, want)
	}
}

func TestLocate_AbsentTool(t *testing.T) {
	if got := Locate("chdman", []string{t.TempDir()}); got != "" {
		t.Errorf("Locate = %q, expected empty for absent tool", got)
	}
}

func TestLocate_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit not checked on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "wget")
	if err := os.WriteFile(path, []byte("not a tool"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if got := Locate("wget", []string{dir}); got != "" {
		t.Errorf("Locate = %q, expected non-executable file to be skipped", got)
	}
}

func TestResolve_PartialToolset(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "wget")
	writeExecutable(t, dir, "7z")

	ts := Resolve([]string{dir})
	if ts.Wget == "" || ts.SevenZip == "" {
		t.Errorf("Resolve missed present tools: %+v", ts)
	}
	if ts.Aria2c != "" || ts.Unzip != "" || ts.Chdman != "" {
		t.Errorf("Resolve reported absent tools as present: %+v", ts)
	}
}

func TestExtractor_Preference(t *testing.T) {
	tests := []struct {
		name      string
		toolset   Toolset
		wantPath  string
		wantSeven bool
	}{
		{"unzip preferred", Toolset{Unzip: "/usr/bin/unzip", SevenZip: "/usr/bin/7z"}, "/usr/bin/unzip", false},
		{"7z fallback", Toolset{SevenZip: "/usr/bin/7z"}, "/usr/bin/7z", true},
		{"neither", Toolset{}, "", false},
	}

	for _, test := range tests {
		path, seven := test.toolset.Extractor()
		if path != test.wantPath || seven != test.wantSeven {
			t.Errorf("%s: Extractor() = (%q, %v), expected (%q, %v)",
				test.name, path, seven, test.wantPath, test.wantSeven)
		}
	}
}
