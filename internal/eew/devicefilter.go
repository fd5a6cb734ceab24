package eew

import (
	"context"
	"fmt"
)

type deviceFilterMode int

const (
	filterUnset deviceFilterMode = iota
	filterAll
	filterOne
	filterMany
)

// DeviceFilter selects which devices a query covers. The zero value is
// invalid; construct one with AllDevices, OneDevice or ManyDevices.
type DeviceFilter struct {
	mode deviceFilterMode
	ids  []string
}

// AllDevices selects every device that has records in the country.
func AllDevices() DeviceFilter {
	return DeviceFilter{mode: filterAll}
}

// OneDevice selects a single device by id.
func OneDevice(id string) DeviceFilter {
	return DeviceFilter{mode: filterOne, ids: []string{id}}
}

// ManyDevices selects an explicit set of device ids.
func ManyDevices(ids []string) DeviceFilter {
	return DeviceFilter{mode: filterMany, ids: append([]string(nil), ids...)}
}

// resolve expands the filter into concrete device ids, listing the country's
// device prefixes when all devices are selected.
func (f DeviceFilter) resolve(ctx context.Context, c *Client) ([]string, error) {
	switch f.mode {
	case filterAll:
		return c.listDeviceIDs(ctx)
	case filterOne:
		return f.ids, nil
	case filterMany:
		if len(f.ids) == 0 {
			return nil, fmt.Errorf("%w: device list is empty", ErrValidation)
		}
		return f.ids, nil
	default:
		return nil, fmt.Errorf("%w: device filter must be AllDevices, OneDevice or ManyDevices", ErrValidation)
	}
}
