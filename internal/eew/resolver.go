package eew

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"shakefetch/internal/keys"
)

// ResolveKeys returns the minimal superset of object keys whose contents
// could include records timestamped within [start, end] for the devices
// selected by filter. The result is duplicate-free and ordered by device,
// then chronologically within each device.
//
// Key timestamps mark the start of an object's time window, so the object
// whose key immediately precedes the query start may still straddle the
// boundary and is kept; all earlier same-day objects are provably disjoint
// from the range and dropped.
func (c *Client) ResolveKeys(ctx context.Context, start, end time.Time, filter DeviceFilter) ([]string, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", keys.ErrRange, end.Format(keys.TimeLayout), start.Format(keys.TimeLayout))
	}

	deviceIDs, err := filter.resolve(ctx, c)
	if err != nil {
		return nil, err
	}

	// A simple lower bound that makes no assumption about how many minutes
	// one object holds: the start of the hour containing the query start.
	startMin := c.builder.MinKey(start)
	startMax := c.builder.MaxKey(start)
	endMax := c.builder.MaxKey(end)

	dayPrefixes, err := c.builder.DayPrefixes(start, end)
	if err != nil {
		return nil, err
	}

	// One listing call per device and day; independent, so they run
	// concurrently against the shared read-only store handle. Results are
	// slotted by position to keep the output deterministic.
	results := make([][]string, len(deviceIDs)*len(dayPrefixes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range deviceIDs {
		devicePrefix := keys.DevicePrefix(c.country, id)
		for j, dayPrefix := range dayPrefixes {
			slot := i*len(dayPrefixes) + j
			prefix := devicePrefix + dayPrefix
			g.Go(func() error {
				listed, err := c.store.ListObjects(gctx, prefix)
				if err != nil {
					return fmt.Errorf("listing %s: %w", prefix, err)
				}
				results[slot] = pruneCandidates(listed, devicePrefix, startMin, startMax, endMax)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Flatten and de-duplicate. Day-prefix iterations for coarse key
	// hierarchies can list the same object twice.
	seen := make(map[string]struct{})
	var resolved []string
	for _, keysForDay := range results {
		for _, k := range keysForDay {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			resolved = append(resolved, k)
		}
	}

	c.logger.Debug("keys resolved",
		"devices", len(deviceIDs), "days", len(dayPrefixes), "keys", len(resolved))
	return resolved, nil
}

// pruneCandidates applies the key-window rules to the listed keys of one
// device and one day prefix.
func pruneCandidates(listed []string, devicePrefix, startMin, startMax, endMax string) []string {
	upper := devicePrefix + endMax + keys.RecordsSuffix
	lower := devicePrefix + startMin

	var candidates []string
	for _, k := range listed {
		if k >= lower && k <= upper {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Among candidates whose key timestamp precedes the query start, only
	// the greatest can still hold in-range records: keys within one device
	// and day are chronologically monotonic, so every earlier one ends
	// before the window opens.
	startUpper := devicePrefix + startMax + keys.RecordsSuffix
	var maxBeforeStart string
	for _, k := range candidates {
		if k <= startUpper && k > maxBeforeStart {
			maxBeforeStart = k
		}
	}
	if maxBeforeStart == "" {
		// Nothing precedes the start; the day's objects all begin at or
		// after it.
		return candidates
	}

	kept := candidates[:0]
	for _, k := range candidates {
		if k >= maxBeforeStart {
			kept = append(kept, k)
		}
	}
	return kept
}

// listDeviceIDs lists all devices that have records in the client's country.
func (c *Client) listDeviceIDs(ctx context.Context) ([]string, error) {
	prefixes, err := c.store.ListCommonPrefixes(ctx, keys.CountryPrefix(c.country), "/")
	if err != nil {
		return nil, fmt.Errorf("listing device prefixes: %w", err)
	}

	var ids []string
	for _, p := range prefixes {
		if id, ok := keys.DeviceIDFromPrefix(p); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
