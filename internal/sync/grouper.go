package sync

import (
	"sort"
	"time"

	"go-punchsync/internal/source"
)

// EventGroup holds one employee's punches for one calendar date, ascending
// by timestamp. Dates are taken in the event's own local time.
type EventGroup struct {
	EmployeeCode string
	Date         time.Time // midnight of the calendar date
	Events       []source.RawEvent
}

type groupKey struct {
	code string
	date string
}

// GroupEvents buckets raw events by (employee code, calendar date). Groups
// come back sorted by key so runs iterate deterministically.
func GroupEvents(events []source.RawEvent) []EventGroup {
	buckets := make(map[groupKey][]source.RawEvent)
	for _, ev := range events {
		key := groupKey{
			code: ev.EmployeeCode,
			date: ev.Timestamp.Format("2006-01-02"),
		}
		buckets[key] = append(buckets[key], ev)
	}

	keys := make([]groupKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].date < keys[j].date
	})

	groups := make([]EventGroup, 0, len(keys))
	for _, k := range keys {
		evs := buckets[k]
		sort.Slice(evs, func(i, j int) bool {
			return evs[i].Timestamp.Before(evs[j].Timestamp)
		})

		first := evs[0].Timestamp
		groups = append(groups, EventGroup{
			EmployeeCode: k.code,
			Date:         time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location()),
			Events:       evs,
		})
	}
	return groups
}
