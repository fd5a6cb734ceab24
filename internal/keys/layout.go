// Package keys encodes the fixed naming convention of the public
// accelerometer dataset: records are stored as line-delimited JSON objects
// under
//
//	records/country_code=<cc>/device_id=<id>/year=<Y>/month=<MM>/day=<DD>/hour=<HH>/<MM>.jsonl
//
// and device metadata under
//
//	devices/country_code=<cc>/devices.jsonl
//
// A key's timestamp marks the start of the object's time window, so the
// object whose key immediately precedes a query's start time may still hold
// records inside the query range.
package keys

import (
	"fmt"
	"strings"
	"time"
)

const (
	// RecordsSuffix terminates every record object key.
	RecordsSuffix = ".jsonl"

	// TimeLayout is the literal format of query datetime strings,
	// always interpreted as UTC.
	TimeLayout = "2006-01-02 15:04:05"

	recordsCountryFormat = "records/country_code=%s/"
	recordsDeviceFormat  = "device_id=%s/"
	devicesKeyFormat     = "devices/country_code=%s/devices.jsonl"

	deviceIDMarker = "device_id="
)

// NewRecordsBuilder returns the Builder matching the dataset's records
// hierarchy at full (minute) granularity.
func NewRecordsBuilder() *Builder {
	b, err := NewBuilder("year={}/", "month={}/", "day={}/", "hour={}/", "{}")
	if err != nil {
		// The template parts are compile-time constants.
		panic(err)
	}
	return b
}

// CountryPrefix returns the records prefix for a country. The country code
// is lower-cased on input.
func CountryPrefix(countryCode string) string {
	return fmt.Sprintf(recordsCountryFormat, strings.ToLower(countryCode))
}

// DevicePrefix returns the records prefix for one device in a country.
func DevicePrefix(countryCode, deviceID string) string {
	return CountryPrefix(countryCode) + fmt.Sprintf(recordsDeviceFormat, deviceID)
}

// DevicesKey returns the key of the single device-metadata object
// for a country.
func DevicesKey(countryCode string) string {
	return fmt.Sprintf(devicesKeyFormat, strings.ToLower(countryCode))
}

// DeviceIDFromPrefix extracts the device id from a listed common prefix such
// as "records/country_code=mx/device_id=000/". The second return is false
// when the prefix carries no device id.
func DeviceIDFromPrefix(prefix string) (string, bool) {
	_, rest, ok := strings.Cut(prefix, deviceIDMarker)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, "/"), true
}

// ParseTime parses a query datetime string in TimeLayout as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %q", ErrFormat, s, TimeLayout)
	}
	return t, nil
}
