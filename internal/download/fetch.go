package download

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/romsavior/romsavior/internal/model"
)

const (
	userAgent    = "romsavior/1.0"
	fetchChunk   = 128 * 1024
	emitInterval = 300 * time.Millisecond
	speedUnknown = ""
)

// fetch is the built-in streaming fallback used when no external
// downloader is resolved. It reads the response in fixed-size chunks,
// writes sequentially, and emits a progress sample derived from
// bytes-read over Content-Length at a bounded rate. When the server
// omits Content-Length the fraction is left at its previous value.
func (p *Pool) fetch(it *model.Item, dest string) error {
	req, err := http.NewRequest(http.MethodGet, it.SourceURL, nil)
	if err != nil {
		return &model.NetworkError{URL: it.SourceURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return &model.NetworkError{URL: it.SourceURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.NetworkError{
			URL: it.SourceURL,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &model.FilesystemError{Op: "create", Path: dest, Err: err}
	}
	defer out.Close()

	total := resp.ContentLength
	var read int64
	lastEmit := time.Now()
	lastRead := int64(0)

	buf := make([]byte, fetchChunk)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return &model.FilesystemError{Op: "write", Path: dest, Err: err}
			}
			read += int64(n)
			if now := time.Now(); now.Sub(lastEmit) >= emitInterval {
				frac, _, _ := it.Progress()
				if total > 0 {
					frac = float64(read) / float64(total)
				}
				it.EmitProgress(frac, fetchSpeed(read-lastRead, now.Sub(lastEmit)), "")
				lastEmit = now
				lastRead = read
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return &model.NetworkError{URL: it.SourceURL, Err: readErr}
		}
	}
	return nil
}

func fetchSpeed(bytes int64, elapsed time.Duration) string {
	if bytes <= 0 || elapsed <= 0 {
		return speedUnknown
	}
	perSec := float64(bytes) / elapsed.Seconds()
	return humanize.IBytes(uint64(perSec)) + "/s"
}

func mkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &model.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}
