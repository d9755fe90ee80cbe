package listing

// Package listing defines the contract with the remote-directory
// collaborator that discovers candidate files. The pipeline core only
// consumes Name and URL to seed queue items; scraping itself lives
// outside this repository.

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Entry is one row of a remote directory listing. Size and Date are
// display strings, passed through untouched.
type Entry struct {
	Name string
	URL  string
	Size string
	Date string
}

// Listing is a remote directory partitioned into subdirectories and
// files.
type Listing struct {
	Dirs  []Entry
	Files []Entry
}

// Lister lists a remote directory. Implementations are external
// collaborators (scrapers, test fakes).
type Lister interface {
	List(ctx context.Context, url string) (Listing, error)
}

// ReadManifest parses a plain-text selection of files, one per line as
// "name<TAB>url". Blank lines and lines starting with '#' are skipped.
// It exists so non-GUI consumers can hand the pipeline a selection
// without a live directory scraper.
func ReadManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, url, found := strings.Cut(line, "\t")
		if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("manifest line %d: want \"name<TAB>url\", got %q", lineNo, line)
		}
		entries = append(entries, Entry{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(url),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}
