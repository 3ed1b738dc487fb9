package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Service counts service events and logs them
type Service struct {
	mu        sync.Mutex
	counts    map[string]int64
	lastSeen  map[string]time.Time
	startedAt time.Time
	now       func() time.Time
}

// Snapshot is a point-in-time copy of the recorded events
type Snapshot struct {
	StartedAt time.Time            `json:"started_at"`
	Counts    map[string]int64     `json:"counts"`
	LastSeen  map[string]time.Time `json:"last_seen"`
}

// NewService creates a new monitoring service
func NewService() *Service {
	now := func() time.Time { return time.Now().UTC() }
	return &Service{
		counts:    map[string]int64{},
		lastSeen:  map[string]time.Time{},
		startedAt: now(),
		now:       now,
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := s.now()

	s.mu.Lock()
	s.counts[eventName]++
	s.lastSeen[eventName] = ts
	s.mu.Unlock()

	nuts.L.Debugf("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
}

// Snapshot returns the event counts recorded so far
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		StartedAt: s.startedAt,
		Counts:    make(map[string]int64, len(s.counts)),
		LastSeen:  make(map[string]time.Time, len(s.lastSeen)),
	}
	for name, count := range s.counts {
		snap.Counts[name] = count
	}
	for name, ts := range s.lastSeen {
		snap.LastSeen[name] = ts
	}
	return snap
}
