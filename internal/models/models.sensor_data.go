// FilePath: internal/models/models.sensor_data.go
package models

import (
	"math"
	"time"
)

// SensorReading is one row of the sensors_rms table
type SensorReading struct {
	Time    time.Time `json:"time" db:"time"`
	Acc0RMS float64   `json:"acc_0_rms" db:"acc_0_rms"`
	Acc1RMS float64   `json:"acc_1_rms" db:"acc_1_rms"`
}

// ChartPoint is a reading as plotted by the chart frontend: x is the epoch in
// milliseconds, y1 and y2 are the two accelerometer channels.
type ChartPoint struct {
	X  *float64 `json:"x"`
	Y1 *float64 `json:"y1"`
	Y2 *float64 `json:"y2"`
}

// ChartSample is the body of a chart save request.
type ChartSample struct {
	Time    *float64 `json:"time" schema:"time"`
	Acc0RMS *float64 `json:"acc_0_rms" schema:"acc_0_rms"`
	Acc1RMS *float64 `json:"acc_1_rms" schema:"acc_1_rms"`
}

// MissingFields lists the required sample fields that are absent.
func (s ChartSample) MissingFields() []string {
	var missing []string
	if s.Time == nil {
		missing = append(missing, "time")
	}
	if s.Acc0RMS == nil {
		missing = append(missing, "acc_0_rms")
	}
	if s.Acc1RMS == nil {
		missing = append(missing, "acc_1_rms")
	}
	return missing
}

// Point maps the sample onto the chart point the repository stores.
func (s ChartSample) Point() ChartPoint {
	return ChartPoint{X: s.Time, Y1: s.Acc0RMS, Y2: s.Acc1RMS}
}

// Bounds of x in epoch milliseconds: 0001-01-01T00:00:00Z to 9999-12-31T23:59:59.999Z.
const (
	MinEpochMillis = -62135596800000.0
	MaxEpochMillis = 253402300799999.0
)

// HasTime reports whether the point carries a usable x, a finite number within
// MinEpochMillis and MaxEpochMillis.
func (p ChartPoint) HasTime() bool {
	if p.X == nil || math.IsNaN(*p.X) || math.IsInf(*p.X, 0) {
		return false
	}
	return *p.X >= MinEpochMillis && *p.X <= MaxEpochMillis
}

// Reading derives the stored reading. Missing y values default to 0.
// Callers must check HasTime first.
func (p ChartPoint) Reading() SensorReading {
	reading := SensorReading{Time: EpochMillisToTime(*p.X)}
	if p.Y1 != nil {
		reading.Acc0RMS = *p.Y1
	}
	if p.Y2 != nil {
		reading.Acc1RMS = *p.Y2
	}
	return reading
}

// EpochMillisToTime converts x/1000 seconds since the Unix epoch to a UTC instant,
// rounded to the microsecond.
func EpochMillisToTime(ms float64) time.Time {
	return time.UnixMicro(int64(math.Round(ms * 1000))).UTC()
}
