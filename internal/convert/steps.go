package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/romsavior/romsavior/internal/model"
)

const (
	heartbeatInterval = 750 * time.Millisecond
	heartbeatFloor    = 0.01
	heartbeatCeil     = 0.99

	archiveExt = ".zip"
	cueExt     = ".cue"
	isoExt     = ".iso"
	chdExt     = ".chd"
)

// process runs the optional extract and convert steps for one item.
// Each step is gated by the item's profile snapshot. Finding no
// convertible source is a skip, not an error.
func (p *Pool) process(it *model.Item) error {
	prof := it.Profile
	tempDir := it.TempDir()
	if tempDir == "" {
		tempDir = filepath.Join(prof.TempDir, filepath.Base(it.RelativePath))
	}

	local := it.LocalFile()
	if local != "" && strings.EqualFold(filepath.Ext(local), archiveExt) && prof.ExtractZip {
		if _, err := os.Stat(local); err == nil {
			it.EmitStatus(model.StatusRunning, "Extracting")
			it.Log("[INFO] Extracting archive...")
			if err := p.extract(it, local, tempDir); err != nil {
				return err
			}
			if prof.DeleteAfterExtract {
				if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
					it.Logf("[WARN] Could not delete archive: %v", err)
				} else {
					it.Log("[INFO] Deleted archive after extraction.")
				}
			}
		}
	}

	if !prof.ConvertToCHD {
		return nil
	}

	src, fromCue := findSource(tempDir)
	if src == "" {
		it.Log("[INFO] No .cue or .iso detected; skipping CHD.")
		return nil
	}

	outDir := OutputDir(prof.OutputDir, it.RelativePath, prof.AutoRoutePerSystem)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &model.FilesystemError{Op: "mkdir", Path: outDir, Err: err}
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	outCHD := filepath.Join(outDir, stem+chdExt)
	if fromCue {
		it.EmitStatus(model.StatusRunning, "Converting (CUE->CHD)")
	} else {
		it.EmitStatus(model.StatusRunning, "Converting (ISO->CHD)")
	}
	if err := p.convertToCHD(it, src, outCHD); err != nil {
		return err
	}

	if prof.DeleteAfterCHD {
		deleteSidecars(it, src, fromCue)
	}
	return nil
}

// extract unpacks the archive into the item's temp directory using
// whichever extraction tool was resolved.
func (p *Pool) extract(it *model.Item, archive, outDir string) error {
	path, sevenZip := p.toolset.Extractor()
	if path == "" {
		return &model.ToolNotFoundError{Tool: "unzip/7z"}
	}
	var args []string
	if sevenZip {
		args = []string{"x", archive, "-o" + outDir, "-y"}
	} else {
		args = []string{"-o", archive, "-d", outDir}
	}
	return p.run(context.Background(), path, args, it.Log)
}

// convertToCHD invokes the external converter. The converter produces
// no percentage output, so a bounded synthetic heartbeat keeps progress
// alive until completion.
func (p *Pool) convertToCHD(it *model.Item, src, outCHD string) error {
	if p.toolset.Chdman == "" {
		return &model.ToolNotFoundError{Tool: "chdman"}
	}
	args := []string{"createcd", "-i", src, "-o", outCHD}
	it.Logf("[CMD] %s %s", p.toolset.Chdman, strings.Join(args, " "))

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				frac, _, _ := it.Progress()
				if frac < heartbeatFloor {
					frac = heartbeatFloor
				}
				if frac > heartbeatCeil {
					frac = heartbeatCeil
				}
				it.EmitProgress(frac, "", "")
			}
		}
	}()
	defer close(stop)

	return p.run(context.Background(), p.toolset.Chdman, args, it.Log)
}

// findSource searches the temp directory recursively for a cue sheet
// first, else a disk image. Matches are sorted so the pick is stable.
func findSource(root string) (path string, fromCue bool) {
	cues := findByExt(root, cueExt)
	if len(cues) > 0 {
		return cues[0], true
	}
	isos := findByExt(root, isoExt)
	if len(isos) > 0 {
		return isos[0], false
	}
	return "", false
}

func findByExt(root, ext string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// OutputDir computes where converted output for an item belongs: the
// configured root, or a subdirectory named by the first segment of the
// item's relative path (its category) when auto-routing is enabled.
func OutputDir(root, relativePath string, autoRoute bool) string {
	if !autoRoute {
		return root
	}
	rel := filepath.ToSlash(relativePath)
	first, _, found := strings.Cut(rel, "/")
	if !found || first == "" {
		return root
	}
	return filepath.Join(root, first)
}

// deleteSidecars removes the conversion source and its companion
// payloads after a successful conversion. Failures are logged, never
// escalated.
func deleteSidecars(it *model.Item, src string, fromCue bool) {
	remove := func(path string) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			it.Logf("[WARN] Could not delete %s: %v", filepath.Base(path), err)
		}
	}
	remove(src)
	if fromCue {
		bins, _ := filepath.Glob(filepath.Join(filepath.Dir(src), "*.bin"))
		for _, b := range bins {
			remove(b)
		}
		it.Log("[INFO] Deleted BIN/CUE after CHD conversion.")
	} else {
		it.Log("[INFO] Deleted ISO after CHD conversion.")
	}
}

// RemoveTempDir removes the item's scratch directory if it exists.
// Removing an already-absent directory is not an error, so the call is
// idempotent; the final sweep relies on that.
func RemoveTempDir(it *model.Item) error {
	dir := it.TempDir()
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return &model.FilesystemError{Op: "remove", Path: dir, Err: err}
	}
	return nil
}
