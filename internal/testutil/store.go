// Package testutil provides shared fixtures for seeding the in-memory
// object store with dataset-shaped content.
package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"shakefetch/internal/eew"
	"shakefetch/internal/keys"
	"shakefetch/internal/objstore"
)

// Rec builds a minimal record for a device with the given cloud-receipt
// time. Device time trails cloud time by one second.
func Rec(deviceID string, cloudT float64) eew.Record {
	return eew.Record{
		DeviceID: deviceID,
		X:        []float64{0.1, 0.2, 0.3},
		Y:        []float64{0.4, 0.5, 0.6},
		Z:        []float64{0.7, 0.8, 0.9},
		SR:       31.25,
		DeviceT:  cloudT - 1,
		CloudT:   cloudT,
	}
}

// RecordKey builds the conventional object key for a device's record batch
// starting at the given timestamp ("2006-01-02 15:04:05", UTC).
func RecordKey(t *testing.T, countryCode, deviceID, timestamp string) string {
	t.Helper()
	dt, err := keys.ParseTime(timestamp)
	if err != nil {
		t.Fatalf("parsing %q: %v", timestamp, err)
	}
	return keys.DevicePrefix(countryCode, deviceID) + keys.NewRecordsBuilder().MaxKey(dt) + keys.RecordsSuffix
}

// JSONLines marshals values into a newline-delimited JSON body.
func JSONLines[T any](t *testing.T, values ...T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			t.Fatalf("encoding value: %v", err)
		}
	}
	return buf.Bytes()
}

// SeedRecords stores a record batch at its conventional key and returns
// that key.
func SeedRecords(t *testing.T, store *objstore.MemoryStore, countryCode, deviceID, timestamp string, records ...eew.Record) string {
	t.Helper()
	key := RecordKey(t, countryCode, deviceID, timestamp)
	store.Put(key, JSONLines(t, records...))
	return key
}

// SeedDevices stores a country's device-metadata object.
func SeedDevices(t *testing.T, store *objstore.MemoryStore, countryCode string, devices ...eew.DeviceMetadata) {
	t.Helper()
	store.Put(keys.DevicesKey(countryCode), JSONLines(t, devices...))
}
