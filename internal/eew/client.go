package eew

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shakefetch/internal/keys"
	"shakefetch/internal/metrics"
	"shakefetch/internal/objstore"
)

// Options configures a Client.
type Options struct {
	// CountryCode is the ISO 3166 two-letter code of the country to read.
	// Required; lower-cased on input.
	CountryCode string

	// TimeField is the record timestamp used for filtering.
	// Defaults to CloudTime.
	TimeField TimeField

	// Concurrency bounds parallel listing and download calls.
	// Defaults to 8.
	Concurrency int

	// Logger defaults to a NopLogger.
	Logger Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.QueryMetrics
}

// Client reads accelerometer records and device metadata for one country.
// All entities it returns are fresh value objects per call; nothing is
// cached between calls.
type Client struct {
	store       objstore.Store
	builder     *keys.Builder
	country     string
	timeField   TimeField
	concurrency int
	logger      Logger
	metrics     *metrics.QueryMetrics
}

// NewClient creates a Client reading from the given store.
func NewClient(store objstore.Store, opts Options) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.CountryCode == "" {
		return nil, fmt.Errorf("country code is required")
	}
	if opts.TimeField == "" {
		opts.TimeField = CloudTime
	}
	if !opts.TimeField.valid() {
		return nil, fmt.Errorf("%w: time field %q, should be %q or %q", ErrValidation, opts.TimeField, CloudTime, DeviceTime)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}

	return &Client{
		store:       store,
		builder:     keys.NewRecordsBuilder(),
		country:     strings.ToLower(opts.CountryCode),
		timeField:   opts.TimeField,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}, nil
}

// TimeField returns the reference field the client filters on.
func (c *Client) TimeField() TimeField { return c.timeField }

// FilteredRecords returns the records of the selected devices whose
// reference time falls within [startUTC, endUTC], both in the literal
// format "2006-01-02 15:04:05" interpreted as UTC, inclusive on both ends.
//
// The call is all-or-nothing: any listing or download failure cancels
// in-flight work and fails the whole query.
func (c *Client) FilteredRecords(ctx context.Context, startUTC, endUTC string, filter DeviceFilter) ([]Record, error) {
	begin := time.Now()

	start, err := keys.ParseTime(startUTC)
	if err != nil {
		return nil, err
	}
	end, err := keys.ParseTime(endUTC)
	if err != nil {
		return nil, err
	}

	resolved, err := c.ResolveKeys(ctx, start, end, filter)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.KeysResolved.Add(float64(len(resolved)))
	}

	batches, err := c.downloadAll(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var records []Record
	var dropped int
	for _, batch := range batches {
		kept := FilterRecords(batch, c.timeField, start, end)
		dropped += len(batch) - len(kept)
		records = append(records, kept...)
	}

	if c.metrics != nil {
		c.metrics.RecordsReturned.Add(float64(len(records)))
		c.metrics.RecordsDropped.Add(float64(dropped))
		c.metrics.QueryDuration.Observe(time.Since(begin).Seconds())
	}
	c.logger.Info("records fetched",
		"keys", len(resolved), "records", len(records), "dropped", dropped)
	return records, nil
}

// downloadAll fetches all keys concurrently and decodes each object into a
// record batch. Batches are slotted by key position; callers needing order
// across keys sort downstream.
func (c *Client) downloadAll(ctx context.Context, keysToGet []string) ([][]Record, error) {
	batches := make([][]Record, len(keysToGet))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, key := range keysToGet {
		g.Go(func() error {
			body, err := c.store.Download(gctx, key)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", key, err)
			}
			defer body.Close()

			recs, err := decodeLines[Record](body)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
			batches[i] = recs
			if c.metrics != nil {
				c.metrics.ObjectsDownloaded.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}
