package model

import (
	"fmt"
	"regexp"
	"time"
)

// Precision is the granularity a Timestamp was parsed at. FHIRPath requires
// that precision round-trip through string rendering (spec.md §3.1, §8
// "Round-trip of timestamps").
type Precision int

// Precision levels, coarsest first.
const (
	PrecisionYear Precision = iota
	PrecisionYearMonth
	PrecisionDate
	PrecisionDateTime
	PrecisionDateTimeSeconds
	PrecisionDateTimeMillis
	PrecisionTime
)

// Timestamp is a FHIRPath Date/DateTime/Time value that remembers the
// precision it was parsed at.
type Timestamp struct {
	t         time.Time
	precision Precision
	hasZone   bool
}

var timestampPattern = regexp.MustCompile(
	`^(\d{4})(?:-(\d{2})(?:-(\d{2})(?:T(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d+))?)?(Z|[+-]\d{2}:\d{2})?)?)?)?$`,
)

var timePattern = regexp.MustCompile(`^T?(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d+))?)?$`)

// ParseTimestamp parses a FHIR Date/DateTime literal, recording the precision
// actually present in the source text.
func ParseTimestamp(s string) (Timestamp, error) {
	m := timestampPattern.FindStringSubmatch(s)
	if m == nil {
		return Timestamp{}, fmt.Errorf("invalid date/datetime literal %q", s)
	}
	year, month, day := m[1], m[2], m[3]
	hour, minute, second, frac, zone := m[4], m[5], m[6], m[7], m[8]

	layout := "2006"
	value := year
	precision := PrecisionYear

	if month != "" {
		layout += "-01"
		value += "-" + month
		precision = PrecisionYearMonth
	}
	if day != "" {
		layout += "-02"
		value += "-" + day
		precision = PrecisionDate
	}
	if hour != "" {
		layout += "T15:04"
		value += "T" + hour + ":" + minute
		precision = PrecisionDateTime
		if second != "" {
			layout += ":05"
			value += ":" + second
			precision = PrecisionDateTimeSeconds
			if frac != "" {
				layout += "." + repeatDigitLayout(len(frac))
				value += "." + frac
				precision = PrecisionDateTimeMillis
			}
		}
		if zone != "" {
			if zone == "Z" {
				layout += "Z07:00"
			} else {
				layout += "-07:00"
			}
			value += zone
		} else {
			// No explicit offset: treat as UTC for comparison purposes.
			zone = ""
		}
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid date/datetime literal %q: %w", s, err)
	}
	return Timestamp{t: t, precision: precision, hasZone: zone != ""}, nil
}

func repeatDigitLayout(n int) string {
	digits := "0"
	out := ""
	for i := 0; i < n; i++ {
		out += digits
	}
	return out
}

// ParseTime parses a FHIRPath Time literal ("T14:30:00").
func ParseTime(s string) (Timestamp, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return Timestamp{}, fmt.Errorf("invalid time literal %q", s)
	}
	hour, minute, second, frac := m[1], m[2], m[3], m[4]
	layout := "15:04"
	value := hour + ":" + minute
	precision := PrecisionTime
	if second != "" {
		layout += ":05"
		value += ":" + second
		if frac != "" {
			layout += "." + repeatDigitLayout(len(frac))
			value += "." + frac
		}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid time literal %q: %w", s, err)
	}
	return Timestamp{t: t, precision: precision}, nil
}

// Precision reports the granularity this Timestamp was parsed at.
func (t Timestamp) Precision() Precision { return t.precision }

// Time exposes the underlying time.Time.
func (t Timestamp) Time() time.Time { return t.t }

// String renders the Timestamp back to its original precision, so that
// ParseTimestamp(t.String()) round-trips to an equal value (spec.md §8).
func (t Timestamp) String() string {
	switch t.precision {
	case PrecisionYear:
		return t.t.Format("2006")
	case PrecisionYearMonth:
		return t.t.Format("2006-01")
	case PrecisionDate:
		return t.t.Format("2006-01-02")
	case PrecisionTime:
		if t.t.Nanosecond() != 0 {
			return t.t.Format("15:04:05.000")
		}
		return t.t.Format("15:04:05")
	default:
		layout := "2006-01-02T15:04"
		switch t.precision {
		case PrecisionDateTimeSeconds:
			layout = "2006-01-02T15:04:05"
		case PrecisionDateTimeMillis:
			layout = "2006-01-02T15:04:05.000"
		}
		if t.hasZone {
			layout += "Z07:00"
		}
		return t.t.Format(layout)
	}
}

// commonPrecision returns the coarser of two precisions, for comparisons
// between timestamps of differing granularity.
func commonPrecision(a, b Precision) Precision {
	if a < b {
		return a
	}
	return b
}

// Cmp compares two Timestamps at the coarser of their two precisions, as
// FHIRPath requires (a Date compared to a DateTime compares only to the day).
func (t Timestamp) Cmp(o Timestamp) int {
	switch commonPrecision(t.precision, o.precision) {
	case PrecisionYear:
		return compareInt(t.t.Year(), o.t.Year())
	case PrecisionYearMonth:
		if c := compareInt(t.t.Year(), o.t.Year()); c != 0 {
			return c
		}
		return compareInt(int(t.t.Month()), int(o.t.Month()))
	case PrecisionDate:
		ta := time.Date(t.t.Year(), t.t.Month(), t.t.Day(), 0, 0, 0, 0, time.UTC)
		tb := time.Date(o.t.Year(), o.t.Month(), o.t.Day(), 0, 0, 0, 0, time.UTC)
		return compareTime(ta, tb)
	default:
		return compareTime(t.t, o.t)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Equal reports whether two Timestamps are equal under FHIRPath equality,
// which requires equal precision as well as equal instant (spec.md §3.1).
func (t Timestamp) Equal(o Timestamp) bool {
	return t.precision == o.precision && t.Cmp(o) == 0
}
