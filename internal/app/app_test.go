package app

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"shakefetch/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("mx", t.TempDir())
	cfg.Store = config.StoreConfig{Type: "memory"}
	return cfg
}

func TestNew_Reentrant(t *testing.T) {
	ctx := context.Background()

	// Two Apps in one process: metric registration must not collide.
	a1, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	defer a1.Close()

	a2, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer a2.Close()
}

func TestNew_MetricsEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsAddr = "127.0.0.1:0"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	addr := a.MetricsAddr()
	if addr == "" {
		t.Fatal("MetricsAddr() = empty, want bound address")
	}

	// Move the counters, then scrape.
	if _, err := a.Records(context.Background(), "2020-03-05 10:00:00", "2020-03-05 11:00:00", []string{"001"}); err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	exposition := string(body)
	for _, metric := range []string{
		"shakefetch_query_keys_resolved_total",
		"shakefetch_query_records_returned_total",
		"shakefetch_query_duration_seconds",
	} {
		if !strings.Contains(exposition, metric) {
			t.Errorf("scrape missing %s:\n%s", metric, exposition)
		}
	}
}

func TestNew_NoMetricsAddr(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if got := a.MetricsAddr(); got != "" {
		t.Errorf("MetricsAddr() = %q, want empty when not configured", got)
	}
}
