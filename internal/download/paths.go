package download

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	stemUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)
	nameUnsafe = regexp.MustCompile(`[^\w.()\- ]+`)
)

// SafeStem derives a filesystem-safe scratch directory name from an
// item's relative path: the final path element without its extension,
// with anything outside [a-zA-Z0-9_.-] replaced by underscores.
func SafeStem(relativePath string) string {
	base := filepath.Base(relativePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stemUnsafe.ReplaceAllString(stem, "_")
}

// DestFileName derives the destination filename from the URL's path
// component, optionally sanitizing characters that are unsafe on some
// filesystems.
func DestFileName(rawURL string, sanitize bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("url %q has no file name component", rawURL)
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if sanitize {
		name = nameUnsafe.ReplaceAllString(name, "_")
	}
	return name, nil
}
