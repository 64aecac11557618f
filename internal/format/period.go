// Package format holds the on-disk enumerations shared by the RRDB-v1 and
// Touch-v2 file formats: calendar periods and reducers. Each format's
// version discriminator is defined in its own package (rrdbfile, touchfile).
package format

import "time"

// Period names a fixed calendar duration used to align aggregate windows
// (RRDB-v1 xforms) and bucket event counts (Touch-v2 sets).
type Period uint32

const (
	FiveMinute Period = iota
	OneHour
	SixHour
	TwelveHour
	OneDay
)

// String returns the on-the-wire name used by both xform specs and touch
// period lists.
func (p Period) String() string {
	switch p {
	case FiveMinute:
		return "FIVEMINUTE"
	case OneHour:
		return "ONEHOUR"
	case SixHour:
		return "SIXHOUR"
	case TwelveHour:
		return "TWELVEHOUR"
	case OneDay:
		return "ONEDAY"
	default:
		return "ONEHOUR"
	}
}

// ParsePeriod maps a period name to its Period value. Unknown names default
// to OneHour, matching the source's touch-path behaviour (spec.md §6).
func ParsePeriod(s string) Period {
	switch s {
	case "FIVEMINUTE":
		return FiveMinute
	case "ONEHOUR":
		return OneHour
	case "SIXHOUR":
		return SixHour
	case "TWELVEHOUR":
		return TwelveHour
	case "ONEDAY":
		return OneDay
	default:
		return OneHour
	}
}

// ParsePeriodStrict is like ParsePeriod but reports whether the name was
// recognised. For an unrecognised name it returns the zero value
// (FiveMinute) rather than OneHour; xform spec parsing ignores ok and keeps
// that zero value.
func ParsePeriodStrict(s string) (Period, bool) {
	switch s {
	case "FIVEMINUTE":
		return FiveMinute, true
	case "ONEHOUR":
		return OneHour, true
	case "SIXHOUR":
		return SixHour, true
	case "TWELVEHOUR":
		return TwelveHour, true
	case "ONEDAY":
		return OneDay, true
	default:
		return 0, false
	}
}

// SecondsPerSample returns the bucket width for the period, used to index
// Touch-v2 count buffers and to compute their retention age. RRDB-v1
// aggregation windows are aligned by WindowStart instead.
func (p Period) SecondsPerSample() int64 {
	switch p {
	case FiveMinute:
		return 60 * 5
	case OneHour:
		return 60 * 60
	case SixHour:
		return 60 * 60 * 6
	case TwelveHour:
		return 60 * 60 * 12
	case OneDay:
		return 60 * 60 * 24
	default:
		return 60 * 60 * 24
	}
}

// WindowStart floors t to the start of the calendar-aligned window this
// period defines, in UTC. The source decomposes with gmtime and recomposes
// with mktime (local time), a latent non-UTC-host bug; this reimplements the
// corrected, UTC-only version per the Design Note in spec.md §9.
func (p Period) WindowStart(t time.Time) time.Time {
	u := t.UTC()
	year, month, day := u.Date()
	hour, min := u.Hour(), u.Minute()

	switch p {
	case FiveMinute:
		min = (min / 5) * 5
		return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
	case OneHour:
		return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	case SixHour:
		hour = (hour / 6) * 6
		return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	case TwelveHour:
		hour = (hour / 12) * 12
		return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	case OneDay:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}
