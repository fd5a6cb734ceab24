package objstore_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"shakefetch/internal/objstore"
)

func TestMemoryStore_ListObjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := objstore.NewMemoryStore()
	store.Put("records/country_code=mx/device_id=001/year=2020/month=03/day=05/hour=10/00.jsonl", []byte("a"))
	store.Put("records/country_code=mx/device_id=001/year=2020/month=03/day=05/hour=10/05.jsonl", []byte("b"))
	store.Put("records/country_code=mx/device_id=002/year=2020/month=03/day=05/hour=10/00.jsonl", []byte("c"))

	t.Run("returns sorted keys under prefix", func(t *testing.T) {
		got, err := store.ListObjects(ctx, "records/country_code=mx/device_id=001/")
		if err != nil {
			t.Fatalf("ListObjects() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d keys, want 2", len(got))
		}
		if got[0] > got[1] {
			t.Errorf("keys not sorted: %v", got)
		}
	})

	t.Run("empty result for unmatched prefix", func(t *testing.T) {
		got, err := store.ListObjects(ctx, "records/country_code=cl/")
		if err != nil {
			t.Fatalf("ListObjects() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d keys, want 0", len(got))
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := store.ListObjects(cancelled, "records/"); err == nil {
			t.Fatal("ListObjects() expected error for cancelled context")
		}
	})
}

func TestMemoryStore_ListCommonPrefixes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := objstore.NewMemoryStore()
	store.Put("records/country_code=mx/device_id=001/year=2020/month=03/day=05/hour=10/00.jsonl", []byte("a"))
	store.Put("records/country_code=mx/device_id=001/year=2020/month=03/day=06/hour=10/00.jsonl", []byte("b"))
	store.Put("records/country_code=mx/device_id=002/year=2020/month=03/day=05/hour=10/00.jsonl", []byte("c"))

	got, err := store.ListCommonPrefixes(ctx, "records/country_code=mx/", "/")
	if err != nil {
		t.Fatalf("ListCommonPrefixes() error = %v", err)
	}
	want := []string{
		"records/country_code=mx/device_id=001/",
		"records/country_code=mx/device_id=002/",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("prefix %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryStore_Download(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := objstore.NewMemoryStore()
	store.Put("devices/country_code=mx/devices.jsonl", []byte(`{"device_id":"001"}`+"\n"))

	t.Run("returns seeded content", func(t *testing.T) {
		body, err := store.Download(ctx, "devices/country_code=mx/devices.jsonl")
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}
		if string(data) != `{"device_id":"001"}`+"\n" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("missing object is ErrNotFound", func(t *testing.T) {
		_, err := store.Download(ctx, "devices/country_code=cl/devices.jsonl")
		if !errors.Is(err, objstore.ErrNotFound) {
			t.Fatalf("Download() error = %v, want ErrNotFound", err)
		}
	})
}
