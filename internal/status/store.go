// Package status holds the last published window for the status API.
package status

import (
	"sync"
	"time"

	"github.com/CristiGvl/picoHWMQTT/internal/aggregator"
)

// Snapshot represents the agent state visible over HTTP
type Snapshot struct {
	Means       []aggregator.Mean `json:"means"`
	Samples     int               `json:"samples"`
	FlushedAt   time.Time         `json:"flushed_at"`
	Connected   bool              `json:"connected"`
	ConnectedAt time.Time         `json:"connected_at"`
}

// Store is safe for concurrent use.
// The driver writes it and the API reads it.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{}
}

// SetWindow records a flushed window
func (s *Store) SetWindow(res aggregator.Result, at time.Time) {
	means := make([]aggregator.Mean, len(res.Means))
	copy(means, res.Means)

	s.mu.Lock()
	s.snapshot.Means = means
	s.snapshot.Samples = res.Samples
	s.snapshot.FlushedAt = at
	s.mu.Unlock()
}

// SetConnected records the broker session state
func (s *Store) SetConnected(ok bool, at time.Time) {
	s.mu.Lock()
	if ok && !s.snapshot.Connected {
		s.snapshot.ConnectedAt = at
	}
	s.snapshot.Connected = ok
	s.mu.Unlock()
}

func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Means = make([]aggregator.Mean, len(s.snapshot.Means))
	copy(snap.Means, s.snapshot.Means)
	return snap
}
