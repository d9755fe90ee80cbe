package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/romsavior/romsavior/internal/config"
	"github.com/romsavior/romsavior/internal/journal"
	"github.com/romsavior/romsavior/internal/listing"
	"github.com/romsavior/romsavior/internal/model"
	"github.com/romsavior/romsavior/internal/pipeline"
	"github.com/romsavior/romsavior/internal/tools"
)

// main is a thin consumer of the pipeline's event stream: it seeds a
// batch from a manifest, prints progress/status/log events, and exits
// non-zero if any item errored. Richer frontends subscribe to the same
// three event kinds.
func main() {
	profilePath := flag.String("profile", "", "path to YAML profile (defaults used when empty)")
	manifestPath := flag.String("manifest", "", "path to a name<TAB>url manifest (default: stdin)")
	relPrefix := flag.String("prefix", "", "relative path prefix for queued items")
	journalPath := flag.String("journal", "", "optional path to a SQLite outcome journal")
	flag.Parse()

	prof, err := loadProfile(*profilePath)
	if err != nil {
		log.Fatalf("profile: %v", err)
	}
	if err := os.MkdirAll(prof.TempDir, 0o755); err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	if err := os.MkdirAll(prof.OutputDir, 0o755); err != nil {
		log.Fatalf("output dir: %v", err)
	}

	entries, err := loadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}
	if len(entries) == 0 {
		log.Fatal("manifest: no entries")
	}

	var opts []pipeline.Option
	if *journalPath != "" {
		store, err := journal.Open(*journalPath)
		if err != nil {
			log.Fatalf("journal: %v", err)
		}
		defer store.Close()
		opts = append(opts, pipeline.WithJournal(store))
	}

	toolset := tools.ResolveFromPath()
	batch := pipeline.NewBatch(toolset, prof, opts...)
	for _, it := range batch.Add(entries, *relPrefix) {
		subscribe(it)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	batch.Start()
	select {
	case <-batch.Done():
	case sig := <-sigCh:
		log.Printf("received %s, stopping after current items", sig)
		batch.Stop()
		<-batch.Done()
	}

	failed := 0
	for _, it := range batch.Items() {
		if it.Status() == model.StatusError {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("%d of %d items failed", failed, len(batch.Items()))
		os.Exit(1)
	}
}

func loadProfile(path string) (config.Profile, error) {
	if path != "" {
		return config.Load(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return config.DefaultProfile(filepath.Join(home, ".romsavior")), nil
}

func loadManifest(path string) ([]listing.Entry, error) {
	if path == "" {
		return listing.ReadManifest(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return listing.ReadManifest(f)
}

func subscribe(it *model.Item) {
	name := filepath.Base(it.RelativePath)
	it.Subscribe(model.Events{
		OnProgress: func(fraction float64, speed, eta string) {
			fmt.Printf("[%s] %3.0f%%  %s  %s\n", name, fraction*100, speed, eta)
		},
		OnStatus: func(status model.Status, step string) {
			fmt.Printf("[%s] %s: %s\n", name, status, step)
		},
		OnLog: func(line string) {
			log.Printf("[%s] %s", name, line)
		},
	})
}
