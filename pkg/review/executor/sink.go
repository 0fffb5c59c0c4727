package executor

import (
	"sync"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Sink is the shared, mutex-guarded result collector both executors append
// to as each agent completes. The engine reads it only after the executor
// returns or the shutdown grace period expires.
type Sink struct {
	mu      sync.Mutex
	results []model.AgentResult
}

// NewSink builds an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append records r. Safe for concurrent use.
func (s *Sink) Append(r model.AgentResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Snapshot returns a copy of the results collected so far, in completion
// order within each phase (and phase order across phases).
func (s *Sink) Snapshot() []model.AgentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AgentResult, len(s.results))
	copy(out, s.results)
	return out
}
