// Package walltime models timestamps that are stored as local wall-clock
// readings. A Time carries no zone of its own; the zone it is read in travels
// next to it (see Zoned) or is implied by the caller's working zone.
package walltime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// Layout is the JSON and display form of a wall-clock reading.
	Layout = "2006-01-02T15:04:05"

	sqlLayout = "2006-01-02 15:04:05"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Time is a wall-clock reading with no zone attached. The zero value means
// "no reading".
type Time struct {
	// t always has location UTC; only its calendar and clock fields matter.
	t time.Time
}

// Date returns the wall-clock reading for the given fields.
func Date(year int, month time.Month, day, hour, min, sec int) Time {
	return Time{t: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// FromInstant returns what a clock in loc shows at instant.
func FromInstant(instant time.Time, loc *time.Location) Time {
	l := instant.In(loc)
	return Time{t: time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)}
}

// In interprets the reading as wall-clock time in loc.
func (w Time) In(loc *time.Location) time.Time {
	return time.Date(w.t.Year(), w.t.Month(), w.t.Day(), w.t.Hour(), w.t.Minute(), w.t.Second(), w.t.Nanosecond(), loc)
}

func (w Time) IsZero() bool             { return w.t.IsZero() }
func (w Time) Before(o Time) bool       { return w.t.Before(o.t) }
func (w Time) After(o Time) bool        { return w.t.After(o.t) }
func (w Time) Equal(o Time) bool        { return w.t.Equal(o.t) }
func (w Time) Compare(o Time) int       { return w.t.Compare(o.t) }
func (w Time) Sub(o Time) time.Duration { return w.t.Sub(o.t) }
func (w Time) Add(d time.Duration) Time { return Time{t: w.t.Add(d)} }
func (w Time) Weekday() time.Weekday    { return w.t.Weekday() }

// AddDate adds calendar days, months and years to the reading.
func (w Time) AddDate(years, months, days int) Time {
	return Time{t: w.t.AddDate(years, months, days)}
}

func (w Time) Date() (year int, month time.Month, day int) { return w.t.Date() }
func (w Time) Clock() (hour, min, sec int)                 { return w.t.Clock() }

// At returns the same calendar day at hour:min:00.
func (w Time) At(hour, min int) Time {
	y, m, d := w.t.Date()
	return Date(y, m, d, hour, min, 0)
}

func (w Time) String() string {
	if w.IsZero() {
		return ""
	}
	return w.t.Format(Layout)
}

// Parse reads a zone-free timestamp. Inputs carrying an offset are rejected.
func Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{t: t}, nil
		}
	}
	return Time{}, fmt.Errorf("walltime: cannot parse %q", s)
}

// ParseBound converts a caller-supplied bound into a wall-clock reading in
// loc. A bound with its own offset is converted into loc; a zone-free bound
// is taken to already be in loc.
func ParseBound(s string, loc *time.Location) (Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FromInstant(t, loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return FromInstant(t, loc), nil
		}
	}
	return Time{}, fmt.Errorf("walltime: cannot parse bound %q", s)
}

func (w Time) MarshalJSON() ([]byte, error) {
	if w.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(w.t.Format(Layout))
}

func (w *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*w = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Value stores the reading as TEXT.
func (w Time) Value() (driver.Value, error) {
	if w.IsZero() {
		return nil, nil
	}
	return w.t.Format(sqlLayout), nil
}

// Scan accepts TEXT columns and driver-parsed time values. A driver-parsed
// time keeps its clock fields; its location is ignored.
func (w *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*w = Time{}
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	case []byte:
		return w.Scan(string(v))
	case time.Time:
		*w = Time{t: time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)}
		return nil
	default:
		return fmt.Errorf("walltime: cannot scan %T", src)
	}
}

// Zoned pairs a wall-clock reading with the zone it is read in.
type Zoned struct {
	Wall Time
	Zone *time.Location
}

// Of returns the reading of instant in loc, keeping loc alongside.
func Of(instant time.Time, loc *time.Location) Zoned {
	return Zoned{Wall: FromInstant(instant, loc), Zone: loc}
}

// Instant returns the absolute time the reading denotes.
func (z Zoned) Instant() time.Time {
	return z.Wall.In(z.Zone)
}

func (z Zoned) String() string {
	return z.Wall.String() + " " + z.Zone.String()
}
