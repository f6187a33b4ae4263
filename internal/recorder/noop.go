package recorder

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoopRecorder keeps archive history in memory only. It is used when the
// SQLite database cannot be opened, so batches still advance until restart.
type NoopRecorder struct {
	mu   sync.Mutex
	runs []ExportRun
}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordExport(run *ExportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.At.IsZero() {
		run.At = time.Now()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, *run)
	return nil
}

func (n *NoopRecorder) ArchivedDates() (map[string]bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	dates := make(map[string]bool)
	for _, r := range n.runs {
		if r.Status == StatusOK || r.Status == StatusEmpty {
			dates[r.Date] = true
		}
	}
	return dates, nil
}

// RecentExports returns up to limit runs, newest first.
func (n *NoopRecorder) RecentExports(limit int) ([]ExportRun, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := slices.Clone(n.runs)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (n *NoopRecorder) Close() error { return nil }
