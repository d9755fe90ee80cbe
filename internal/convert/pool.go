package convert

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/romsavior/romsavior/internal/model"
	"github.com/romsavior/romsavior/internal/tools"
)

const queueCapacity = 512

type runFunc func(ctx context.Context, path string, args []string, onLine func(string)) error

// Pool is the conversion worker pool. It defaults to a single
// sequential worker; more may be configured, in which case completion
// order is not serial-by-submission.
type Pool struct {
	toolset tools.Toolset
	workers int

	queue   chan *model.Item
	stopCh  chan struct{}
	stopped atomic.Bool
	wg      sync.WaitGroup

	// onItemDone fires exactly once per dequeued item at its terminal
	// conversion state; the scheduler counts completions through it.
	onItemDone func(*model.Item)

	run runFunc
}

// NewPool creates a conversion pool. onItemDone may be nil.
func NewPool(toolset tools.Toolset, workers int, onItemDone func(*model.Item)) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		toolset:    toolset,
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

// Enqueue adds downloaded items to the conversion queue in order.
func (p *Pool) Enqueue(items ...*model.Item) {
	for _, it := range items {
		it.SetPhase(model.PhaseConvert)
		it.EmitStatus(model.StatusQueued, "Waiting (process)")
		p.queue <- it
	}
}

// Stop requests a cooperative shutdown, clearing pending queue contents
// so blocked workers exit after their current item.
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

// handle runs one downloaded item to a terminal conversion state. On
// failure the scratch directory is deliberately left in place for
// inspection; only the final sweep may remove it later.
func (p *Pool) handle(workerID int, it *model.Item) {
	defer func() {
		if p.onItemDone != nil {
			p.onItemDone(it)
		}
	}()

	if err := p.process(it); err != nil {
		log.Printf("convert worker %d: %s: %v", workerID, it.RelativePath, err)
		it.Fail("Process failed", err)
		return
	}
	it.MarkConverted()
	it.EmitProgress(1.0, "", "")
	it.EmitStatus(model.StatusDone, "Finished")
	it.Log("[INFO] Processing finished.")

	if err := RemoveTempDir(it); err != nil {
		it.EmitStatus(model.StatusWarning, "Cleanup failed: "+err.Error())
		it.Logf("[WARN] Cleanup failed: %v", err)
		return
	}
	it.Log("[INFO] Cleaned up temp directory.")
}
