package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordEvent(t *testing.T) {
	s := NewService()
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RecordEvent("reading.saved", nil)
	s.RecordEvent("reading.saved", map[string]string{"route": "/save_data_from_chart"})
	s.RecordEvent("connection.failed", map[string]string{"kind": "connection"})

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.Counts["reading.saved"])
	assert.Equal(t, int64(1), snap.Counts["connection.failed"])
	assert.Equal(t, fixed, snap.LastSeen["reading.saved"])

	// The snapshot is a copy.
	snap.Counts["reading.saved"] = 100
	assert.Equal(t, int64(2), s.Snapshot().Counts["reading.saved"])
}

func TestRecordEventConcurrent(t *testing.T) {
	s := NewService()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordEvent("fallback.appended", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), s.Snapshot().Counts["fallback.appended"])
}
