package keys

import (
	"fmt"
	"strings"
	"time"
)

// placeholder marks where a template part receives its datetime value.
const placeholder = "{}"

// Builder builds the datetime portion of object keys organized by a
// year/month/day/hour/minute hierarchy. The year value is substituted as a
// 4-digit decimal and all finer levels as zero-padded 2-digit decimals, so
// lexicographic order on built keys matches chronological order.
//
// A Builder is immutable after construction.
type Builder struct {
	parts []string // one template part per level, year first
}

// NewBuilder creates a Builder from ordered template parts, coarsest first:
// year, then optionally month, day, hour and minute. Levels are contiguous
// by construction: supplying only the parts up to the desired granularity
// truncates the template there. Each part must contain exactly one "{}"
// placeholder. An example full template:
//
//	NewBuilder("year={}/", "month={}/", "day={}/", "hour={}/", "{}")
func NewBuilder(parts ...string) (*Builder, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: year template part is required", ErrConfiguration)
	}
	if len(parts) > len(granularityNames) {
		return nil, fmt.Errorf("%w: at most %d template parts allowed, got %d", ErrConfiguration, len(granularityNames), len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty %s template part", ErrConfiguration, Granularity(i))
		}
		if strings.Count(p, placeholder) != 1 {
			return nil, fmt.Errorf("%w: %s template part %q must contain exactly one %q", ErrConfiguration, Granularity(i), p, placeholder)
		}
	}
	b := &Builder{parts: make([]string, len(parts))}
	copy(b.parts, parts)
	return b, nil
}

// Granularity returns the finest level configured on this builder.
func (b *Builder) Granularity() Granularity {
	return Granularity(len(b.parts) - 1)
}

// build concatenates template parts through level g, substituting values.
func (b *Builder) build(values [len(granularityNames)]int, g Granularity) string {
	var sb strings.Builder
	for i := Granularity(0); i <= g; i++ {
		width := 2
		if i == Year {
			width = 4
		}
		v := fmt.Sprintf("%0*d", width, values[i])
		sb.WriteString(strings.Replace(b.parts[i], placeholder, v, 1))
	}
	return sb.String()
}

func valuesOf(t time.Time) [len(granularityNames)]int {
	var vals [len(granularityNames)]int
	for i := range vals {
		vals[i] = Granularity(i).value(t)
	}
	return vals
}

// PartFor returns the key fragment for t through the requested granularity,
// clamped to the builder's own finest configured level.
func (b *Builder) PartFor(t time.Time, g Granularity) (string, error) {
	if !g.valid() {
		return "", fmt.Errorf("%w: unknown granularity %s, should be one of %v", ErrConfiguration, g, granularityNames)
	}
	if g > b.Granularity() {
		g = b.Granularity()
	}
	return b.build(valuesOf(t), g), nil
}

// MaxKey returns the most granular key fragment for t, the upper-bound
// fragment for any object that could hold data timestamped at t.
func (b *Builder) MaxKey(t time.Time) string {
	return b.build(valuesOf(t), b.Granularity())
}

// MinKey returns a conservative lower-bound fragment for t: the value at the
// builder's own finest level is replaced by that level's minimum before
// substitution. Coarser levels keep their values from t.
func (b *Builder) MinKey(t time.Time) string {
	g := b.Granularity()
	vals := valuesOf(t)
	vals[g] = granularityMin[g]
	return b.build(vals, g)
}

// DayPrefixes returns the ordered, duplicate-free day-granularity key
// fragments covering every calendar day from start's date through end's
// date, inclusive. Both fragments for equal start and end dates collapse to
// a single entry.
func (b *Builder) DayPrefixes(start, end time.Time) ([]string, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", ErrRange, end.Format(TimeLayout), start.Format(TimeLayout))
	}

	endY, endM, endD := end.Date()
	endDate := time.Date(endY, endM, endD, 0, 0, 0, 0, time.UTC)

	var prefixes []string
	for d := start; ; d = d.AddDate(0, 0, 1) {
		y, m, day := d.Date()
		if time.Date(y, m, day, 0, 0, 0, 0, time.UTC).After(endDate) {
			break
		}
		p, err := b.PartFor(d, Day)
		if err != nil {
			return nil, err
		}
		// The day loop is monotonic, so duplicates from builders coarser
		// than Day are always adjacent.
		if len(prefixes) == 0 || prefixes[len(prefixes)-1] != p {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes, nil
}
