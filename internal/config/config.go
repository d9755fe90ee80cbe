package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Downloader selection values
const (
	DownloaderPrimary   = "primary"
	DownloaderSecondary = "secondary"
)

// Default values
const (
	DefaultParallelDownloads = 3
	DefaultSpeedCapKiB       = 0 // unlimited
)

// Profile is the per-item configuration snapshot consumed by the worker
// pools. Fields map one-to-one onto the profile file; unknown keys in
// the file are rejected at load time rather than silently ignored.
type Profile struct {
	TempDir            string `yaml:"temp_dir"`
	Downloader         string `yaml:"downloader"`
	ExtractZip         bool   `yaml:"extract_zip"`
	ConvertToCHD       bool   `yaml:"convert_to_chd"`
	DeleteAfterExtract bool   `yaml:"delete_after_extract"`
	DeleteAfterCHD     bool   `yaml:"delete_after_chd"`
	OutputDir          string `yaml:"output_dir"`
	ParallelDownloads  int    `yaml:"parallel_downloads"`
	SpeedCapKiB        int    `yaml:"speed_cap_kib"`
	SanitizeNames      bool   `yaml:"sanitize_names"`
	AutoRoutePerSystem bool   `yaml:"auto_route_per_system"`
}

// DefaultProfile returns a profile with the stock defaults rooted under
// baseDir (extraction and conversion on, auto-routing on).
func DefaultProfile(baseDir string) Profile {
	return Profile{
		TempDir:            filepath.Join(baseDir, "tmp"),
		Downloader:         DownloaderPrimary,
		ExtractZip:         true,
		ConvertToCHD:       true,
		OutputDir:          filepath.Join(baseDir, "output"),
		ParallelDownloads:  DefaultParallelDownloads,
		SpeedCapKiB:        DefaultSpeedCapKiB,
		AutoRoutePerSystem: true,
	}
}

// Load reads a profile from a YAML file. Decoding is strict: keys not
// declared on Profile fail the load. Zero values for temp/output dirs
// and parallelism are backfilled from the defaults rooted next to the
// profile file.
func Load(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	p := Profile{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}

	defaults := DefaultProfile(filepath.Dir(path))
	if p.TempDir == "" {
		p.TempDir = defaults.TempDir
	}
	if p.OutputDir == "" {
		p.OutputDir = defaults.OutputDir
	}
	if p.Downloader == "" {
		p.Downloader = defaults.Downloader
	}
	if p.ParallelDownloads == 0 {
		p.ParallelDownloads = defaults.ParallelDownloads
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile for values the pipeline cannot run with.
func (p Profile) Validate() error {
	if p.TempDir == "" {
		return fmt.Errorf("profile: temp_dir is required")
	}
	if p.OutputDir == "" {
		return fmt.Errorf("profile: output_dir is required")
	}
	if p.Downloader != DownloaderPrimary && p.Downloader != DownloaderSecondary {
		return fmt.Errorf("profile: downloader must be %q or %q, got %q",
			DownloaderPrimary, DownloaderSecondary, p.Downloader)
	}
	if p.ParallelDownloads < 1 {
		return fmt.Errorf("profile: parallel_downloads must be >= 1, got %d", p.ParallelDownloads)
	}
	if p.SpeedCapKiB < 0 {
		return fmt.Errorf("profile: speed_cap_kib must be >= 0, got %d", p.SpeedCapKiB)
	}
	return nil
}
