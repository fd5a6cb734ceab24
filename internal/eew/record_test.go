package eew_test

import (
	"testing"
	"time"

	"shakefetch/internal/eew"
)

func TestFilterRecords(t *testing.T) {
	t.Parallel()

	records := []eew.Record{
		{DeviceID: "a", CloudT: 99, DeviceT: 99},
		{DeviceID: "b", CloudT: 100, DeviceT: 100},
		{DeviceID: "c", CloudT: 101, DeviceT: 101},
		{DeviceID: "d", CloudT: 102, DeviceT: 102},
	}
	start := time.Unix(100, 0).UTC()
	end := time.Unix(101, 0).UTC()

	t.Run("range is inclusive on both ends", func(t *testing.T) {
		got := eew.FilterRecords(records, eew.CloudTime, start, end)
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
		if got[0].CloudT != 100 || got[1].CloudT != 101 {
			t.Errorf("kept cloud times %v and %v, want 100 and 101", got[0].CloudT, got[1].CloudT)
		}
	})

	t.Run("filters on the configured reference field", func(t *testing.T) {
		shifted := []eew.Record{
			{DeviceID: "a", CloudT: 100, DeviceT: 99},
			{DeviceID: "b", CloudT: 102, DeviceT: 100},
		}
		got := eew.FilterRecords(shifted, eew.DeviceTime, start, end)
		if len(got) != 1 || got[0].DeviceID != "b" {
			t.Fatalf("got %v, want only device b", got)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		if got := eew.FilterRecords(nil, eew.CloudTime, start, end); len(got) != 0 {
			t.Errorf("got %d records, want 0", len(got))
		}
	})
}

func TestRecord_RefTime(t *testing.T) {
	t.Parallel()
	r := eew.Record{CloudT: 10, DeviceT: 9}

	if got := r.RefTime(eew.CloudTime); got != 10 {
		t.Errorf("RefTime(cloud) = %v, want 10", got)
	}
	if got := r.RefTime(eew.DeviceTime); got != 9 {
		t.Errorf("RefTime(device) = %v, want 9", got)
	}
}
