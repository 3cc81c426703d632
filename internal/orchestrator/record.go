package orchestrator

import (
	"sync"
	"time"

	"conductor/internal/analyzer"
	"conductor/internal/strategy"
)

// Status tracks a request through its state machine. Transitions are totally
// ordered within one request; error is terminal from any state.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusAnalyzing    Status = "analyzing"
	StatusPlanning     Status = "planning"
	StatusExecuting    Status = "executing"
	StatusCoordinating Status = "coordinating"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// ExecutionRecord is the full account of one request.
type ExecutionRecord struct {
	ID             string                  `json:"id"`
	RequestText    string                  `json:"request_text"`
	Analysis       analyzer.TaskAnalysis   `json:"analysis"`
	Recommendation strategy.Recommendation `json:"recommendation"`
	ProvidersUsed  []string                `json:"providers_used"`
	RolesUsed      []string                `json:"roles_used"`
	Status         Status                  `json:"status"`
	StartTS        time.Time               `json:"start_ts"`
	EndTS          time.Time               `json:"end_ts"`
	Result         string                  `json:"result,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// ElapsedMS returns the wall-clock duration of the request.
func (r *ExecutionRecord) ElapsedMS() int64 {
	if r.EndTS.IsZero() {
		return 0
	}
	return r.EndTS.Sub(r.StartTS).Milliseconds()
}

// history is the bounded FIFO of execution records. When full, the oldest
// record is dropped.
type history struct {
	mu      sync.Mutex
	max     int
	records []ExecutionRecord
}

func newHistory(max int) *history {
	if max <= 0 {
		max = 1
	}
	return &history{max: max}
}

func (h *history) append(r ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) >= h.max {
		h.records = h.records[1:]
	}
	h.records = append(h.records, r)
}

// Recent returns up to n records, newest last. n <= 0 returns everything.
func (h *history) Recent(n int) []ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > len(h.records) {
		n = len(h.records)
	}
	out := make([]ExecutionRecord, n)
	copy(out, h.records[len(h.records)-n:])
	return out
}

func (h *history) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
