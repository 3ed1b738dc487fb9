package service

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/database"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/models"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
)

type fakeReadings struct {
	mu       sync.Mutex
	inserted []models.ChartPoint
	insert   repository.Result
	list     []models.SensorReading
	listRes  repository.Result
}

func (f *fakeReadings) Insert(ctx context.Context, point models.ChartPoint) repository.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, point)
	return f.insert
}

func (f *fakeReadings) ListAll(ctx context.Context) ([]models.SensorReading, repository.Result) {
	return f.list, f.listRes
}

type fakeFallback struct {
	payloads [][]byte
	err      error
}

func (f *fakeFallback) Append(ctx context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeConnections struct {
	acquireErr error
	acquired   int
	released   int
}

func (f *fakeConnections) Acquire(ctx context.Context) (*database.Handle, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquired++
	return &database.Handle{}, nil
}

func (f *fakeConnections) Release(h *database.Handle) error {
	f.released++
	return nil
}

func f64(v float64) *float64 { return &v }

func TestSaveChartSample(t *testing.T) {
	readings := &fakeReadings{insert: repository.Ok()}
	svc := New(readings, &fakeFallback{}, &fakeConnections{})

	result := svc.SaveChartSample(context.Background(), models.ChartSample{
		Time: f64(1700000000000), Acc0RMS: f64(1.5), Acc1RMS: f64(2.5),
	})
	require.True(t, result.Success)
	require.Len(t, readings.inserted, 1)
	assert.Equal(t, 1700000000000.0, *readings.inserted[0].X)
	assert.Equal(t, 1.5, *readings.inserted[0].Y1)
	assert.Equal(t, 2.5, *readings.inserted[0].Y2)
}

func TestSaveChartSampleMissingField(t *testing.T) {
	readings := &fakeReadings{insert: repository.Ok()}
	svc := New(readings, &fakeFallback{}, &fakeConnections{})

	result := svc.SaveChartSample(context.Background(), models.ChartSample{
		Time: f64(1700000000000), Acc1RMS: f64(2.5),
	})
	assert.False(t, result.Success)
	assert.Equal(t, errors.ErrorTypeValidation, result.Kind)
	assert.Contains(t, result.Err.Error(), "acc_0_rms")
	assert.Empty(t, readings.inserted)
}

func TestSavePointFailure(t *testing.T) {
	failure := repository.Failed(errors.NewQueryError("failed to insert reading", stderrors.New("boom")))
	svc := New(&fakeReadings{insert: failure}, &fakeFallback{}, &fakeConnections{})

	result := svc.SavePoint(context.Background(), models.ChartPoint{X: f64(1)})
	assert.False(t, result.Success)
	assert.Equal(t, errors.ErrorTypeQuery, result.Kind)
}

func TestListReadingsNeverNil(t *testing.T) {
	svc := New(&fakeReadings{listRes: repository.Failed(errors.NewConnectionError("down", nil))}, &fakeFallback{}, &fakeConnections{})

	readings, result := svc.ListReadings(context.Background())
	assert.False(t, result.Success)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
}

func TestAppendFallback(t *testing.T) {
	fallback := &fakeFallback{}
	svc := New(&fakeReadings{}, fallback, &fakeConnections{})

	result := svc.AppendFallback(context.Background(), []byte(`{"a":1}`))
	assert.True(t, result.Success)
	assert.Len(t, fallback.payloads, 1)

	fallback.err = errors.NewIOError("failed to open fallback file", stderrors.New("read-only file system"))
	result = svc.AppendFallback(context.Background(), []byte(`{"a":1}`))
	assert.False(t, result.Success)
	assert.Equal(t, errors.ErrorTypeIO, result.Kind)
}

func TestCheckConnection(t *testing.T) {
	conns := &fakeConnections{}
	svc := New(&fakeReadings{}, &fakeFallback{}, conns)

	result := svc.CheckConnection(context.Background())
	assert.True(t, result.Success)
	assert.Equal(t, 1, conns.acquired)
	assert.Equal(t, 1, conns.released)

	conns.acquireErr = errors.NewConnectionError("failed to open ssh tunnel", stderrors.New("no route to host"))
	result = svc.CheckConnection(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, errors.ErrorTypeConnection, result.Kind)
	assert.Equal(t, 1, conns.released, "release is not called when acquire fails")
}

func TestCheckConnectionWithProvisioner(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, DBName: filepath.Join(t.TempDir(), "check.db")}
	svc := New(&fakeReadings{}, &fakeFallback{}, database.NewProvisioner(cfg, config.SSHConfig{}))

	assert.True(t, svc.CheckConnection(context.Background()).Success)
}

func TestEventsAreEmitted(t *testing.T) {
	svc := New(&fakeReadings{insert: repository.Ok()}, &fakeFallback{}, &fakeConnections{})

	var mu sync.Mutex
	var got []map[string]string
	require.NoError(t, svc.OnEvent(EventReadingFailed, func(labels map[string]string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, labels)
	}))

	svc.SaveChartSample(context.Background(), models.ChartSample{})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "validation", got[0]["kind"])
}

func TestEventsForEveryOperation(t *testing.T) {
	svc := New(&fakeReadings{insert: repository.Ok(), listRes: repository.Ok()}, &fakeFallback{}, &fakeConnections{})

	var mu sync.Mutex
	seen := map[string]int{}
	for _, event := range []string{EventReadingSaved, EventReadingsListed, EventFallbackAppended, EventConnectionChecked} {
		event := event
		require.NoError(t, svc.OnEvent(event, func(labels map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			seen[event]++
			assert.Empty(t, labels["kind"])
		}))
	}

	ctx := context.Background()
	svc.SavePoint(ctx, models.ChartPoint{X: f64(1700000000000)})
	svc.ListReadings(ctx)
	svc.AppendFallback(ctx, []byte(`{}`))
	svc.CheckConnection(ctx)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[EventReadingSaved] == 1 && seen[EventReadingsListed] == 1 &&
			seen[EventFallbackAppended] == 1 && seen[EventConnectionChecked] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New(&fakeReadings{}, &fakeFallback{}, &fakeConnections{}).Validate())
	assert.Error(t, New(nil, &fakeFallback{}, &fakeConnections{}).Validate())
}
