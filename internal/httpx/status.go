package httpx

import (
	"sync"
	"time"

	"Stratus/internal/pipeline"
)

// RunStatus holds the most recent run summary for the status endpoint.
// Summaries are never persisted; this is in-memory only.
type RunStatus struct {
	mu       sync.Mutex
	last     pipeline.Summary
	finished time.Time
	hasRun   bool
}

func (s *RunStatus) Record(sum pipeline.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = sum
	s.finished = time.Now().UTC()
	s.hasRun = true
}

func (s *RunStatus) Last() (pipeline.Summary, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.finished, s.hasRun
}
