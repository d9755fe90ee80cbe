package pipeline

import (
	"log"
	"net/http"
	"os"
	"path"
	"sync"
	"sync/atomic"

	"github.com/romsavior/romsavior/internal/config"
	"github.com/romsavior/romsavior/internal/convert"
	"github.com/romsavior/romsavior/internal/download"
	"github.com/romsavior/romsavior/internal/listing"
	"github.com/romsavior/romsavior/internal/model"
	"github.com/romsavior/romsavior/internal/tools"
)

// State is the batch-wide position in the pipeline.
type State string

const (
	StateAwaitingStart      State = "AwaitingStart"
	StateDownloading        State = "Downloading"
	StateAwaitingProcessing State = "AwaitingProcessing"
	StateProcessing         State = "Processing"
	StateSweeping           State = "Sweeping"
	StateIdle               State = "Idle"
)

// Recorder persists an item's terminal outcome. Satisfied by
// journal.Store; nil disables journaling.
type Recorder interface {
	Record(it *model.Item) error
}

// Option configures a Batch.
type Option func(*Batch)

// WithJournal attaches a terminal-outcome recorder.
func WithJournal(r Recorder) Option {
	return func(b *Batch) { b.recorder = r }
}

// WithConvertWorkers overrides the conversion pool size (default 1,
// sequential).
func WithConvertWorkers(n int) Option {
	return func(b *Batch) {
		if n >= 1 {
			b.convertWorkers = n
		}
	}
}

// WithHTTPClient overrides the HTTP client used by the streaming
// fallback downloader.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Batch) { b.client = c }
}

// Batch drives one selection of items through both phases. Items are
// added while AwaitingStart; Start is called once.
type Batch struct {
	profile config.Profile
	toolset tools.Toolset
	client  *http.Client

	convertWorkers int
	recorder       Recorder

	downloads   *download.Pool
	conversions *convert.Pool

	mu    sync.Mutex
	state State
	items []*model.Item

	downloadsDone sync.WaitGroup
	convertsDone  sync.WaitGroup

	stopCh  chan struct{}
	stopped atomic.Bool
	doneCh  chan struct{}
}

// NewBatch creates an empty batch for one profile and toolset.
func NewBatch(toolset tools.Toolset, profile config.Profile, opts ...Option) *Batch {
	b := &Batch{
		profile:        profile,
		toolset:        toolset,
		client:         http.DefaultClient,
		convertWorkers: 1,
		state:          StateAwaitingStart,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.downloads = download.NewPool(toolset, b.client, profile.ParallelDownloads, func(it *model.Item) {
		b.downloadsDone.Done()
	})
	b.conversions = convert.NewPool(toolset, b.convertWorkers, func(it *model.Item) {
		b.convertsDone.Done()
	})
	return b
}

// Add creates queue items from (name, url) entries supplied by the
// directory-listing collaborator, under a relative path prefix, and
// returns them so consumers can subscribe to their events.
func (b *Batch) Add(entries []listing.Entry, relPrefix string) []*model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	added := make([]*model.Item, 0, len(entries))
	for _, e := range entries {
		it := model.NewItem(e.URL, path.Join(relPrefix, e.Name), b.profile)
		b.items = append(b.items, it)
		added = append(added, it)
	}
	return added
}

// Items returns all items in submission order.
func (b *Batch) Items() []*model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*model.Item, len(b.items))
	copy(out, b.items)
	return out
}

// State returns the batch-wide state.
func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Batch) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Done is closed when the batch reaches Idle or is stopped.
func (b *Batch) Done() <-chan struct{} {
	return b.doneCh
}

// Start launches both pools, enqueues every item for download, and
// begins watching for phase completion. The watcher advances the batch
// automatically; no further calls are needed.
func (b *Batch) Start() {
	items := b.Items()
	b.setState(StateDownloading)
	b.downloads.Start()
	b.conversions.Start()
	b.downloadsDone.Add(len(items))
	b.downloads.Enqueue(items...)
	go b.watch(items)
}

// Stop requests a cooperative shutdown of both pools. Workers finish
// their current item; pending queue contents are discarded. An
// in-flight external process is not interrupted.
func (b *Batch) Stop() {
	if b.stopped.Swap(true) {
		return
	}
	close(b.stopCh)
	b.downloads.Stop()
	b.conversions.Stop()
}

func (b *Batch) watch(items []*model.Item) {
	defer close(b.doneCh)

	if !b.await(&b.downloadsDone) {
		return
	}
	b.setState(StateAwaitingProcessing)

	var toConvert []*model.Item
	for _, it := range items {
		if it.DownloadSucceeded() {
			toConvert = append(toConvert, it)
		}
	}
	b.convertsDone.Add(len(toConvert))
	b.setState(StateProcessing)
	b.conversions.Enqueue(toConvert...)

	if !b.await(&b.convertsDone) {
		return
	}

	b.setState(StateSweeping)
	b.Sweep()
	b.record(items)
	b.setState(StateIdle)
}

// await blocks until the counter drains or the batch is stopped.
func (b *Batch) await(wg *sync.WaitGroup) bool {
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return true
	case <-b.stopCh:
		return false
	}
}

// Sweep removes any temp directory still present for items whose
// conversion succeeded. The pass is idempotent: directories the
// conversion worker already removed are silently skipped, and items
// that never downloaded are never touched.
func (b *Batch) Sweep() {
	for _, it := range b.Items() {
		if !it.ConvertSucceeded() {
			continue
		}
		dir := it.TempDir()
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := convert.RemoveTempDir(it); err != nil {
			it.Logf("[WARN] Final sweep failed: %v", err)
			continue
		}
		it.Log("[INFO] Final sweep: cleaned temp directory.")
	}
}

func (b *Batch) record(items []*model.Item) {
	if b.recorder == nil {
		return
	}
	for _, it := range items {
		if err := b.recorder.Record(it); err != nil {
			log.Printf("journal: record %s: %v", it.RelativePath, err)
		}
	}
}
