package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/romsavior/romsavior/internal/config"
)

// Events is a per-item subscription. Any consumer (CLI, GUI, test
// harness) observes an item through these three callback kinds; nil
// callbacks are skipped. Callbacks are invoked without the item's lock
// held, so they may freely read the item back.
type Events struct {
	OnProgress func(fraction float64, speed, eta string)
	OnStatus   func(status Status, step string)
	OnLog      func(line string)
}

// Item tracks one source file through the download and convert phases.
// SourceURL, RelativePath and Profile are immutable after creation. The
// mutable state is written only by the worker that owns the item in its
// active phase; the scheduler reads it.
type Item struct {
	ID           string
	SourceURL    string
	RelativePath string
	Profile      config.Profile

	mu           sync.Mutex
	phase        Phase
	status       Status
	step         string
	progress     float64
	speed        string
	eta          string
	localFile    string
	tempDir      string
	downloadedOK bool
	convertedOK  bool
	lastError    string
	subs         []Events
}

// NewItem creates a queued item for one (name, url) source entry.
func NewItem(sourceURL, relativePath string, profile config.Profile) *Item {
	return &Item{
		ID:           newItemID(),
		SourceURL:    sourceURL,
		RelativePath: relativePath,
		Profile:      profile,
		phase:        PhaseDownload,
		status:       StatusQueued,
	}
}

// Subscribe registers an event consumer for this item.
func (it *Item) Subscribe(ev Events) {
	it.mu.Lock()
	it.subs = append(it.subs, ev)
	it.mu.Unlock()
}

// EmitProgress records a progress sample and notifies subscribers. The
// fraction is clamped to [0,1]; it is not required to be monotonic
// (external tools report noisy or restarted progress). Speed and eta
// are stored as given, so workers substituting a previous value pass it
// explicitly.
func (it *Item) EmitProgress(fraction float64, speed, eta string) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	it.mu.Lock()
	it.progress = fraction
	it.speed = speed
	it.eta = eta
	subs := it.snapshotSubs()
	it.mu.Unlock()

	for _, s := range subs {
		if s.OnProgress != nil {
			s.OnProgress(fraction, speed, eta)
		}
	}
}

// EmitStatus records a status transition and notifies subscribers. An
// empty step keeps the previous step description.
func (it *Item) EmitStatus(status Status, step string) {
	it.mu.Lock()
	it.status = status
	if step != "" {
		it.step = step
	}
	step = it.step
	subs := it.snapshotSubs()
	it.mu.Unlock()

	for _, s := range subs {
		if s.OnStatus != nil {
			s.OnStatus(status, step)
		}
	}
}

// Log forwards one line of per-item output to subscribers.
func (it *Item) Log(line string) {
	line = strings.TrimRight(line, "\r\n")
	it.mu.Lock()
	subs := it.snapshotSubs()
	it.mu.Unlock()

	for _, s := range subs {
		if s.OnLog != nil {
			s.OnLog(line)
		}
	}
}

// Logf is Log with formatting.
func (it *Item) Logf(format string, args ...any) {
	it.Log(fmt.Sprintf(format, args...))
}

func (it *Item) snapshotSubs() []Events {
	subs := make([]Events, len(it.subs))
	copy(subs, it.subs)
	return subs
}

// Status returns the item's current status.
func (it *Item) Status() Status {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.status
}

// Step returns the current step description.
func (it *Item) Step() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.step
}

// Progress returns the last emitted fraction, speed and eta.
func (it *Item) Progress() (float64, string, string) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.progress, it.speed, it.eta
}

// Phase returns the phase the item currently belongs to.
func (it *Item) Phase() Phase {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.phase
}

// SetPhase moves the item into a phase. Called by the scheduler when it
// advances the batch.
func (it *Item) SetPhase(p Phase) {
	it.mu.Lock()
	it.phase = p
	it.mu.Unlock()
}

// LocalFile returns the downloaded file path, empty until the download
// phase sets it.
func (it *Item) LocalFile() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.localFile
}

// SetLocalFile records the destination path chosen by the download
// worker.
func (it *Item) SetLocalFile(path string) {
	it.mu.Lock()
	it.localFile = path
	it.mu.Unlock()
}

// TempDir returns the item's scratch directory, empty until created.
func (it *Item) TempDir() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.tempDir
}

// SetTempDir records the scratch directory once the download worker has
// created it. The directory is exclusively owned by the item: only its
// own worker or the final sweep may remove it.
func (it *Item) SetTempDir(dir string) {
	it.mu.Lock()
	it.tempDir = dir
	it.mu.Unlock()
}

// DownloadSucceeded reports whether the download phase completed.
func (it *Item) DownloadSucceeded() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.downloadedOK
}

// MarkDownloaded flips the download-success flag. Write-once per
// attempt, set only by the owning download worker.
func (it *Item) MarkDownloaded() {
	it.mu.Lock()
	it.downloadedOK = true
	it.mu.Unlock()
}

// ConvertSucceeded reports whether the convert phase completed. It can
// only ever be true after DownloadSucceeded.
func (it *Item) ConvertSucceeded() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.convertedOK
}

// MarkConverted flips the convert-success flag for an item that was
// previously downloaded.
func (it *Item) MarkConverted() {
	it.mu.Lock()
	if it.downloadedOK {
		it.convertedOK = true
	}
	it.mu.Unlock()
}

// LastError returns the message from the most recent failure, if any.
func (it *Item) LastError() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.lastError
}

// Fail records a phase failure: status Error with the error message as
// the step. The worker that called it moves on to its next queued item.
func (it *Item) Fail(step string, err error) {
	it.mu.Lock()
	it.lastError = err.Error()
	it.mu.Unlock()
	it.EmitStatus(StatusError, fmt.Sprintf("%s: %v", step, err))
	it.Logf("[ERROR] %s: %v", step, err)
}

// newItemID generates a unique item ID using UUID v7 so IDs sort
// chronologically.
func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("item-%d", time.Now().UnixNano())
	}
	return "item-" + id.String()
}
