// Package frame assembles accelerometer records into a flat tabular view,
// one row per sample, with an interpolated per-sample timestamp.
package frame

import (
	"fmt"
	"math"
	"sort"

	"shakefetch/internal/eew"
)

// Axis names the sample axis whose length drives the per-sample timestamps.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

func (a Axis) valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// Row is one sample of one record. Axis values absent from the source
// record are NaN.
type Row struct {
	DeviceID string
	SampleT  float64
	X        float64
	Y        float64
	Z        float64
	SR       float64
	DeviceT  float64
	CloudT   float64
}

// Frame is an ordered collection of sample rows.
type Frame struct {
	Rows []Row
}

// SampleTimes estimates the Unix time of each of n samples: the final
// sample coincides with refT and earlier samples step back by 1/sr.
// Values are rounded to millisecond precision.
func SampleTimes(refT float64, n int, sr float64) []float64 {
	times := make([]float64, n)
	for i := range times {
		t := refT - (1/sr)*float64(n-1-i)
		times[i] = math.Round(t*1000) / 1000
	}
	return times
}

// FromRecords builds a Frame from records. The reference time field anchors
// the interpolation and the reference axis determines the sample count per
// record. Rows are sorted by device, then sample time, then device time.
func FromRecords(records []eew.Record, field eew.TimeField, refAxis Axis) (*Frame, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("records must be non-empty")
	}
	if refAxis == "" {
		refAxis = AxisX
	}
	if !refAxis.valid() {
		return nil, fmt.Errorf("unknown axis %q, should be x, y or z", refAxis)
	}

	var rows []Row
	for _, r := range records {
		n := len(axisSamples(r, refAxis))
		times := SampleTimes(r.RefTime(field), n, r.SR)
		for i := 0; i < n; i++ {
			rows = append(rows, Row{
				DeviceID: r.DeviceID,
				SampleT:  times[i],
				X:        sampleAt(r.X, i),
				Y:        sampleAt(r.Y, i),
				Z:        sampleAt(r.Z, i),
				SR:       r.SR,
				DeviceT:  r.DeviceT,
				CloudT:   r.CloudT,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DeviceID != rows[j].DeviceID {
			return rows[i].DeviceID < rows[j].DeviceID
		}
		if rows[i].SampleT != rows[j].SampleT {
			return rows[i].SampleT < rows[j].SampleT
		}
		return rows[i].DeviceT < rows[j].DeviceT
	})

	return &Frame{Rows: rows}, nil
}

func axisSamples(r eew.Record, a Axis) []float64 {
	switch a {
	case AxisY:
		return r.Y
	case AxisZ:
		return r.Z
	default:
		return r.X
	}
}

func sampleAt(samples []float64, i int) float64 {
	if i >= len(samples) {
		return math.NaN()
	}
	return samples[i]
}
