package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"shakefetch/internal/config"
	"shakefetch/internal/eew"
	"shakefetch/internal/frame"
	"shakefetch/internal/keys"
	"shakefetch/internal/metrics"
	"shakefetch/internal/objstore"
)

// App is the application layer between the CLI and the eew.Client.
// It constructs all dependencies from config and exposes CLI-shaped
// operations. The caller must call Close when done.
type App struct {
	cfg        *config.Config
	store      objstore.Store
	client     *eew.Client
	logFile    *os.File
	metricsSrv *http.Server
	metricsLn  net.Listener
}

// New creates a fully wired App from the given config. Metrics live on a
// per-App registry, so multiple Apps in one process do not collide.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	opID := uuid.New().String()[:8]

	timeField := cfg.TimeField
	if timeField == "" {
		timeField = string(eew.CloudTime)
	}
	logger, logFile, err := newLogger(cfg.LogDir, opID, cfg.LogLevel,
		slog.String("country", strings.ToLower(cfg.CountryCode)),
		slog.String("time_field", timeField),
	)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := objstore.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	registry := prometheus.NewRegistry()
	client, err := eew.NewClient(store, eew.Options{
		CountryCode: cfg.CountryCode,
		TimeField:   eew.TimeField(cfg.TimeField),
		Concurrency: cfg.Concurrency,
		Logger:      &slogAdapter{l: logger},
		Metrics:     metrics.New(registry),
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}

	a := &App{
		cfg:     cfg,
		store:   store,
		client:  client,
		logFile: logFile,
	}

	if cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("listening on metrics address %s: %w", cfg.MetricsAddr, err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		srv := &http.Server{Handler: mux}

		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics server listening", "addr", ln.Addr().String())

		a.metricsSrv = srv
		a.metricsLn = ln
	}

	return a, nil
}

// MetricsAddr returns the bound metrics listen address, or an empty string
// when metrics serving is not configured.
func (a *App) MetricsAddr() string {
	if a.metricsLn == nil {
		return ""
	}
	return a.metricsLn.Addr().String()
}

// deviceFilter maps the CLI's device id list onto a filter:
// absent means all devices.
func deviceFilter(deviceIDs []string) eew.DeviceFilter {
	switch len(deviceIDs) {
	case 0:
		return eew.AllDevices()
	case 1:
		return eew.OneDevice(deviceIDs[0])
	default:
		return eew.ManyDevices(deviceIDs)
	}
}

// Records returns the filtered records for the given UTC date range and
// optional device ids.
func (a *App) Records(ctx context.Context, startUTC, endUTC string, deviceIDs []string) ([]eew.Record, error) {
	return a.client.FilteredRecords(ctx, startUTC, endUTC, deviceFilter(deviceIDs))
}

// ResolveKeys returns the candidate object keys for the given query without
// downloading anything.
func (a *App) ResolveKeys(ctx context.Context, startUTC, endUTC string, deviceIDs []string) ([]string, error) {
	start, err := keys.ParseTime(startUTC)
	if err != nil {
		return nil, err
	}
	end, err := keys.ParseTime(endUTC)
	if err != nil {
		return nil, err
	}
	return a.client.ResolveKeys(ctx, start, end, deviceFilter(deviceIDs))
}

// Export fetches records and writes them as a sorted tabular frame to w.
// format is "csv" or "xlsx".
func (a *App) Export(ctx context.Context, w io.Writer, startUTC, endUTC string, deviceIDs []string, format string) error {
	records, err := a.Records(ctx, startUTC, endUTC, deviceIDs)
	if err != nil {
		return err
	}

	f, err := frame.FromRecords(records, a.client.TimeField(), frame.AxisX)
	if err != nil {
		return fmt.Errorf("assembling frame: %w", err)
	}

	switch format {
	case "csv":
		return f.WriteCSV(w)
	case "xlsx":
		return f.WriteXLSX(w)
	default:
		return fmt.Errorf("unknown export format %q, should be csv or xlsx", format)
	}
}

// DevicesFullHistory returns all device metadata rows for the country.
func (a *App) DevicesFullHistory(ctx context.Context) ([]eew.DeviceMetadata, error) {
	return a.client.DevicesFullHistory(ctx)
}

// CurrentDevices returns the currently-valid device metadata rows.
func (a *App) CurrentDevices(ctx context.Context) ([]eew.DeviceMetadata, error) {
	return a.client.CurrentDevices(ctx)
}

// DevicesAsOf returns the device metadata rows valid at the given UTC date.
func (a *App) DevicesAsOf(ctx context.Context, dateUTC string) ([]eew.DeviceMetadata, error) {
	return a.client.DevicesAsOf(ctx, dateUTC)
}

// Close releases all resources.
func (a *App) Close() error {
	if a.metricsSrv != nil {
		a.metricsSrv.Close()
	}
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
