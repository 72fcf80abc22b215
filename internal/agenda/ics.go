package agenda

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

// WriteICS renders items as an iCalendar feed. Recurring events are written
// as their expanded occurrences, one VEVENT each. Untimed tasks are skipped.
func WriteICS(w io.Writer, items []Item, zone *time.Location, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//autoagenda//agenda//ES")
	cal.SetXWRTimezone(zone.String())

	for _, it := range items {
		start, ok := it.Start()
		if !ok {
			continue
		}

		loc := zone
		if it.Timezone != nil && *it.Timezone != "" {
			if l, err := time.LoadLocation(*it.Timezone); err == nil {
				loc = l
			}
		}

		var uid string
		end := start
		switch it.Type {
		case TypeTask:
			uid = fmt.Sprintf("task-%d@autoagenda", it.ID)
		case TypeEvent:
			uid = fmt.Sprintf("event-%d-%s@autoagenda", it.ID, start.In(loc).UTC().Format("20060102T150405Z"))
			if !it.EndAt.IsZero() {
				end = it.EndAt
			}
		}

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start.In(loc))
		ev.SetEndAt(end.In(loc))
		ev.SetSummary(it.Title)
		if it.Description != "" {
			ev.SetDescription(it.Description)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
