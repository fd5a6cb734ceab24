package keys

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by this package. Callers match them with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrConfiguration indicates a malformed key-template configuration,
	// such as a missing year template or an unknown granularity name.
	ErrConfiguration = errors.New("invalid key template configuration")

	// ErrRange indicates an end date earlier than its start date.
	ErrRange = errors.New("end date earlier than start date")

	// ErrFormat indicates a datetime string that does not match TimeLayout.
	ErrFormat = errors.New("invalid datetime format")
)

// Granularity is the finest time unit encoded in a key template,
// ordered from coarsest (Year) to finest (Minute).
type Granularity int

const (
	Year Granularity = iota
	Month
	Day
	Hour
	Minute
)

var granularityNames = [...]string{"year", "month", "day", "hour", "minute"}

// Minimum valid value at each level: months and days are 1-based,
// hours and minutes 0-based. Year has no realistic floor below 1.
var granularityMin = [...]int{1, 1, 1, 0, 0}

func (g Granularity) valid() bool {
	return g >= Year && g <= Minute
}

func (g Granularity) String() string {
	if !g.valid() {
		return fmt.Sprintf("granularity(%d)", int(g))
	}
	return granularityNames[g]
}

// ParseGranularity maps a level name ("year", "month", "day", "hour",
// "minute") to its Granularity. Unknown names are a configuration error.
func ParseGranularity(name string) (Granularity, error) {
	for i, n := range granularityNames {
		if n == name {
			return Granularity(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown granularity %q, should be one of %v", ErrConfiguration, name, granularityNames)
}

// value extracts the datetime component for this level.
func (g Granularity) value(t time.Time) int {
	switch g {
	case Year:
		return t.Year()
	case Month:
		return int(t.Month())
	case Day:
		return t.Day()
	case Hour:
		return t.Hour()
	default:
		return t.Minute()
	}
}
