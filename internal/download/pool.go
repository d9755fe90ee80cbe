package download

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/romsavior/romsavior/internal/config"
	"github.com/romsavior/romsavior/internal/model"
	"github.com/romsavior/romsavior/internal/progress"
	"github.com/romsavior/romsavior/internal/tools"
)

const queueCapacity = 512

// runFunc matches tools.Run; replaceable in tests.
type runFunc func(ctx context.Context, path string, args []string, onLine func(string)) error

// Pool is the download worker pool. Exactly Workers goroutines drain
// the shared queue; each fully owns one item's transfer at a time.
type Pool struct {
	toolset tools.Toolset
	client  *http.Client
	workers int

	queue   chan *model.Item
	stopCh  chan struct{}
	stopped atomic.Bool
	wg      sync.WaitGroup

	// onItemDone fires exactly once per dequeued item, after the item
	// has reached a terminal download state. The scheduler uses it as
	// its completion counter.
	onItemDone func(*model.Item)

	run runFunc
}

// NewPool creates a download pool with workers parallel workers.
// onItemDone may be nil.
func NewPool(toolset tools.Toolset, client *http.Client, workers int, onItemDone func(*model.Item)) *Pool {
	if workers < 1 {
		workers = 1
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Pool{
		toolset:    toolset,
		client:     client,
		workers:    workers,
		queue:      make(chan *model.Item, queueCapacity),
		stopCh:     make(chan struct{}),
		onItemDone: onItemDone,
		run:        tools.Run,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Enqueue adds items to the download queue in order.
func (p *Pool) Enqueue(items ...*model.Item) {
	for _, it := range items {
		it.SetPhase(model.PhaseDownload)
		it.EmitStatus(model.StatusQueued, "Waiting (download)")
		p.queue <- it
	}
}

// Stop requests a cooperative shutdown: pending queue contents are
// cleared and workers exit after finishing their current item. An
// in-flight external tool call is not interrupted; the worker only
// observes the stop after that call returns.
func (p *Pool) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	close(p.stopCh)
	for {
		select {
		case <-p.queue:
		default:
			p.wg.Wait()
			return
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		if p.stopped.Load() {
			return
		}
		select {
		case it := <-p.queue:
			p.handle(id, it)
		case <-p.stopCh:
			return
		}
	}
}

// handle runs one item to a terminal download state. Errors are
// converted into status events; they never abort the loop.
func (p *Pool) handle(workerID int, it *model.Item) {
	defer func() {
		if p.onItemDone != nil {
			p.onItemDone(it)
		}
	}()

	if err := p.download(it); err != nil {
		log.Printf("download worker %d: %s: %v", workerID, it.RelativePath, err)
		it.Fail("Download failed", err)
		return
	}
	it.MarkDownloaded()
	it.EmitProgress(1.0, "", "")
	it.EmitStatus(model.StatusDownloaded, "Download complete")
	it.Log("[INFO] Download complete.")
}

func (p *Pool) download(it *model.Item) error {
	prof := it.Profile

	tempDir := filepath.Join(prof.TempDir, SafeStem(it.RelativePath))
	if err := mkdirAll(tempDir); err != nil {
		return err
	}
	it.SetTempDir(tempDir)

	filename, err := DestFileName(it.SourceURL, prof.SanitizeNames)
	if err != nil {
		return err
	}
	dest := filepath.Join(tempDir, filename)
	it.SetLocalFile(dest)

	it.EmitStatus(model.StatusRunning, "Downloading")
	it.EmitProgress(0, "", "")

	switch {
	case prof.Downloader == config.DownloaderPrimary && p.toolset.Aria2c != "":
		return p.runParsed(it, p.toolset.Aria2c, aria2cArgs(dest, it.SourceURL, prof.SpeedCapKiB), progress.KindAria2c)
	case p.toolset.Wget != "":
		return p.runParsed(it, p.toolset.Wget, wgetArgs(dest, it.SourceURL), progress.KindWget)
	default:
		it.Log("[INFO] Using built-in HTTP stream fallback.")
		return p.fetch(it, dest)
	}
}

// aria2cArgs builds the primary downloader invocation: resumable,
// multi-connection, overwrite-allowed, with an optional overall rate
// cap.
func aria2cArgs(dest, sourceURL string, speedCapKiB int) []string {
	args := []string{
		"--console-log-level=notice",
		"--enable-color=false",
		"--show-console-readout=true",
		"--allow-overwrite=true",
		"--continue=true",
		"--max-connection-per-server=16",
		"--split=16",
		"--min-split-size=1M",
		"--summary-interval=1",
		fmt.Sprintf("--dir=%s", filepath.Dir(dest)),
		fmt.Sprintf("--out=%s", filepath.Base(dest)),
	}
	if speedCapKiB > 0 {
		args = append(args, fmt.Sprintf("--max-overall-download-limit=%dK", speedCapKiB))
	}
	return append(args, sourceURL)
}

// wgetArgs builds the secondary downloader invocation: resume enabled,
// explicit output path.
func wgetArgs(dest, sourceURL string) []string {
	return []string{"-c", "-O", dest, sourceURL}
}

// runParsed drives an external downloader, logging every merged output
// line to the item and emitting a progress sample for lines that match
// the tool's patterns. A facet missing from a matched line inherits the
// item's previous value.
func (p *Pool) runParsed(it *model.Item, toolPath string, args []string, kind progress.ToolKind) error {
	it.Logf("[CMD] %s %s", toolPath, strings.Join(args, " "))
	return p.run(context.Background(), toolPath, args, func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		it.Log(line)
		sample, ok := progress.Parse(kind, line)
		if !ok {
			return
		}
		frac, speed, eta := it.Progress()
		if sample.HasFraction {
			frac = sample.Fraction
		}
		if sample.Speed != "" {
			speed, eta = sample.Speed, sample.ETA
		}
		it.EmitProgress(frac, speed, eta)
	})
}
