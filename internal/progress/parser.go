package progress

// Package progress turns single lines of external-tool output into
// progress samples. Parsing is stateless and pure: unmatched lines
// yield no sample rather than an error, and a sample may carry only one
// facet (fraction, or speed/eta) when the line only shows that facet.

import (
	"regexp"
	"strconv"
)

// ToolKind selects the line patterns of one supported downloader.
type ToolKind string

const (
	// KindAria2c matches aria2c-style console readouts:
	// "[#1a2b3c 12MiB/175MiB(6%) CN:16 DL:1.2MiB/s ETA:2m18s]"
	KindAria2c ToolKind = "aria2c"

	// KindWget matches wget-style progress lines:
	// "  2950K .......... 37% 2.3MB/s eta 12s"
	KindWget ToolKind = "wget"
)

var (
	ariaPct      = regexp.MustCompile(`\((\d+)%\)`)
	ariaSpeedETA = regexp.MustCompile(`(?i)DL:\s*([0-9.]+[KMG]?i?B/s)\s+ETA:\s*([0-9hms:]+)`)
	wgetPct      = regexp.MustCompile(`(\d+)%`)
	wgetSpeedETA = regexp.MustCompile(`(?i)\s([0-9.]+[KMG]?i?B?/s)\s+eta\s+([0-9hms:]+)`)
)

// Sample is the progress reading taken from one line. HasFraction
// reports whether the line carried a percent token; Speed and ETA are
// empty when the line carried no rate token. Consumers substitute the
// item's previous values for missing facets.
type Sample struct {
	Fraction    float64
	HasFraction bool
	Speed       string
	ETA         string
}

// Parse matches one line of merged tool output against the patterns for
// kind. The second return is false when the line carries no progress
// information at all. Fractions are clamped to [0,1] regardless of what
// the tool printed.
func Parse(kind ToolKind, line string) (Sample, bool) {
	var pctRe, speedRe *regexp.Regexp
	switch kind {
	case KindAria2c:
		pctRe, speedRe = ariaPct, ariaSpeedETA
	case KindWget:
		pctRe, speedRe = wgetPct, wgetSpeedETA
	default:
		return Sample{}, false
	}

	s := Sample{}
	matched := false
	if m := pctRe.FindStringSubmatch(line); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			s.Fraction = clamp(pct / 100.0)
			s.HasFraction = true
			matched = true
		}
	}
	if m := speedRe.FindStringSubmatch(line); m != nil {
		s.Speed = m[1]
		s.ETA = m[2]
		matched = true
	}
	return s, matched
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
