package model

// Status represents the status of a queue item within its current phase
type Status string

const (
	// StatusQueued means the item is waiting in a work queue
	StatusQueued Status = "Queued"

	// StatusRunning means a worker currently owns the item
	StatusRunning Status = "Running"

	// StatusDownloaded means the download phase finished successfully
	StatusDownloaded Status = "Downloaded"

	// StatusDone means the item completed all phases
	StatusDone Status = "Done"

	// StatusError means the item failed in its current phase
	StatusError Status = "Error"

	// StatusWarning means the item succeeded but a non-fatal step
	// (temp cleanup) failed
	StatusWarning Status = "Warning"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further automatic transition occurs
// within the current phase. Warning counts as terminal: the work it
// reports on has already succeeded. Callers deciding phase advancement
// must use this rather than comparing raw values, so new statuses can
// be added without touching the scheduler.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError || s == StatusWarning
}

// Phase is one of the two pipeline stages a batch progresses through
type Phase string

const (
	PhaseDownload Phase = "Download"
	PhaseConvert  Phase = "Convert"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}
