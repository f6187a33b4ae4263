package recorder

import "time"

// Export statuses. Dates recorded as StatusOK or StatusEmpty are not archived again.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// ExportRun records the archive outcome for one date.
type ExportRun struct {
	ID      string
	Date    string // YYYY-MM-DD
	Start   string // HH:MM
	End     string // HH:MM
	Status  string
	Series  int
	Up      int
	Down    int
	Records int
	Files   []string
	Note    string
	At      time.Time
}

// Recorder persists archive history.
type Recorder interface {
	RecordExport(run *ExportRun) error
	// ArchivedDates returns dates whose last export does not need a retry.
	ArchivedDates() (map[string]bool, error)
	RecentExports(limit int) ([]ExportRun, error)
	Close() error
}
