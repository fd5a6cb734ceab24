package eew

import (
	"context"
	"errors"
	"fmt"

	"shakefetch/internal/keys"
	"shakefetch/internal/objstore"
)

// DeviceMetadata is one row of a country's device metadata history. Each
// device has many rows over time with non-overlapping validity intervals;
// the dataset publisher is the only writer.
type DeviceMetadata struct {
	DeviceID      string  `json:"device_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	EffectiveFrom float64 `json:"effective_from"`
	EffectiveTo   float64 `json:"effective_to"`
	IsCurrentRow  bool    `json:"is_current_row"`
}

// DevicesFullHistory downloads the country's device-metadata object and
// returns all rows in file order.
func (c *Client) DevicesFullHistory(ctx context.Context) ([]DeviceMetadata, error) {
	key := keys.DevicesKey(c.country)

	body, err := c.store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, fmt.Errorf("device metadata for country %q: %w", c.country, err)
		}
		return nil, fmt.Errorf("downloading device metadata: %w", err)
	}
	defer body.Close()

	devices, err := decodeLines[DeviceMetadata](body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return devices, nil
}

// CurrentDevices returns the currently-valid metadata rows.
func (c *Client) CurrentDevices(ctx context.Context) ([]DeviceMetadata, error) {
	history, err := c.DevicesFullHistory(ctx)
	if err != nil {
		return nil, err
	}

	var current []DeviceMetadata
	for _, d := range history {
		if d.IsCurrentRow {
			current = append(current, d)
		}
	}
	return current, nil
}

// DevicesAsOf returns the metadata rows whose validity interval contains
// the given UTC date, inclusive on both ends. dateUTC uses the literal
// format "2006-01-02 15:04:05".
func (c *Client) DevicesAsOf(ctx context.Context, dateUTC string) ([]DeviceMetadata, error) {
	t, err := keys.ParseTime(dateUTC)
	if err != nil {
		return nil, err
	}
	ts := float64(t.Unix())

	history, err := c.DevicesFullHistory(ctx)
	if err != nil {
		return nil, err
	}

	var asOf []DeviceMetadata
	for _, d := range history {
		if d.EffectiveFrom <= ts && d.EffectiveTo >= ts {
			asOf = append(asOf, d)
		}
	}
	return asOf, nil
}
