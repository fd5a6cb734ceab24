// Package eew reads seismic-accelerometer records and device metadata from
// the public dataset. The central piece is key-range resolution: mapping a
// time range and device filter onto the minimal set of stored object keys
// whose contents could include matching records.
package eew

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrValidation indicates a malformed query argument, such as an
// unconstructed device filter.
var ErrValidation = errors.New("invalid query argument")

// Record is one accelerometer record as stored: one JSON object per line,
// carrying a burst of samples per axis.
type Record struct {
	DeviceID string    `json:"device_id"`
	X        []float64 `json:"x"`
	Y        []float64 `json:"y"`
	Z        []float64 `json:"z"`
	// SR is the sample rate per second.
	SR float64 `json:"sr"`
	// DeviceT is the device-measured Unix time of the final sample.
	DeviceT float64 `json:"device_t"`
	// CloudT is the cloud-receipt Unix time. Objects are named by it.
	CloudT float64 `json:"cloud_t"`
}

// TimeField names the record timestamp used as a filtering reference.
type TimeField string

const (
	// CloudTime filters on cloud-receipt time, the field objects are
	// named by. This is the default.
	CloudTime TimeField = "cloud_t"
	// DeviceTime filters on device-measured time. It is correlated with
	// but not identical to cloud-receipt time, so key resolution still
	// runs on cloud time and the filter may admit slightly different
	// record sets.
	DeviceTime TimeField = "device_t"
)

func (f TimeField) valid() bool {
	return f == CloudTime || f == DeviceTime
}

// RefTime returns the record's timestamp for the given reference field.
func (r Record) RefTime(field TimeField) float64 {
	if field == DeviceTime {
		return r.DeviceT
	}
	return r.CloudT
}

// FilterRecords keeps the records whose reference time lies within
// [start, end], inclusive on both ends.
func FilterRecords(records []Record, field TimeField, start, end time.Time) []Record {
	lo := float64(start.Unix())
	hi := float64(end.Unix())

	var kept []Record
	for _, r := range records {
		if t := r.RefTime(field); t >= lo && t <= hi {
			kept = append(kept, r)
		}
	}
	return kept
}

// decodeLines parses newline-delimited JSON, one value per line.
// Blank lines are skipped.
func decodeLines[T any](r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	// Records carry thousands of samples per line.
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var out []T
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return out, nil
}
