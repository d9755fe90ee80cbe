package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile("/base")

	if p.TempDir != filepath.Join("/base", "tmp") {
		t.Errorf("TempDir = %q", p.TempDir)
	}
	if p.OutputDir != filepath.Join("/base", "output") {
		t.Errorf("OutputDir = %q", p.OutputDir)
	}
	if p.Downloader != DownloaderPrimary {
		t.Errorf("Downloader = %q", p.Downloader)
	}
	if !p.ExtractZip || !p.ConvertToCHD || !p.AutoRoutePerSystem {
		t.Errorf("expected extract/convert/auto-route on by default: %+v", p)
	}
	if p.ParallelDownloads != DefaultParallelDownloads {
		t.Errorf("ParallelDownloads = %d", p.ParallelDownloads)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default profile invalid: %v", err)
	}
}

func TestLoad_BackfillsDefaults(t *testing.T) {
	path := writeProfile(t, "extract_zip: false\nparallel_downloads: 5\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.ExtractZip {
		t.Error("ExtractZip = true, expected explicit false to win")
	}
	if p.ParallelDownloads != 5 {
		t.Errorf("ParallelDownloads = %d, expected 5", p.ParallelDownloads)
	}
	if p.TempDir == "" || p.OutputDir == "" || p.Downloader == "" {
		t.Errorf("defaults not backfilled: %+v", p)
	}
}

func TestLoad_UnknownKeyFailsClosed(t *testing.T) {
	path := writeProfile(t, "downloader: primary\nspeed_limit: 100\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a profile with an unknown key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded for a missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultProfile("/base")

	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr string
	}{
		{"valid", func(p *Profile) {}, ""},
		{"secondary downloader", func(p *Profile) { p.Downloader = DownloaderSecondary }, ""},
		{"empty temp dir", func(p *Profile) { p.TempDir = "" }, "temp_dir"},
		{"empty output dir", func(p *Profile) { p.OutputDir = "" }, "output_dir"},
		{"bad downloader", func(p *Profile) { p.Downloader = "curl" }, "downloader"},
		{"zero parallel", func(p *Profile) { p.ParallelDownloads = 0 }, "parallel_downloads"},
		{"negative cap", func(p *Profile) { p.SpeedCapKiB = -1 }, "speed_cap_kib"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := valid
			test.mutate(&p)
			err := p.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, expected nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, expected error mentioning %q", err, test.wantErr)
			}
		})
	}
}
