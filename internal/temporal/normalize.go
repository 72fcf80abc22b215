package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	bareHourPattern   = regexp.MustCompile(`^(\d{1,2})$`)
	hourMinutePattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)
)

// Clock is a validated time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String returns the canonical HH:MM form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// NormalizeTime canonicalizes a loose time-of-day string. Accepted forms are a
// bare hour ("17"), hour:minute ("9:30"), hour.minute ("14.30"), each with an
// optional trailing "h" ("17h"). Out-of-range values are rejected.
func NormalizeTime(s string) (Clock, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), ".", ":")
	s = strings.TrimSpace(strings.TrimSuffix(s, "h"))
	if s == "" {
		return Clock{}, false
	}

	var c Clock
	if m := bareHourPattern.FindStringSubmatch(s); m != nil {
		c.Hour, _ = strconv.Atoi(m[1])
	} else if m := hourMinutePattern.FindStringSubmatch(s); m != nil {
		c.Hour, _ = strconv.Atoi(m[1])
		c.Minute, _ = strconv.Atoi(m[2])
	} else {
		return Clock{}, false
	}

	if !c.valid() {
		return Clock{}, false
	}
	return c, true
}

// DayPart is a coarse time-of-day hint.
type DayPart string

const (
	Morning   DayPart = "morning"
	Noon      DayPart = "noon"
	Afternoon DayPart = "afternoon"
	Night     DayPart = "night"
)

var dayPartClocks = map[DayPart]Clock{
	Morning:   {Hour: 10},
	Noon:      {Hour: 13},
	Afternoon: {Hour: 16},
	Night:     {Hour: 20},
}

// Clock returns the default time of day for the hint.
func (p DayPart) Clock() (Clock, bool) {
	c, ok := dayPartClocks[DayPart(strings.ToLower(string(p)))]
	return c, ok
}
