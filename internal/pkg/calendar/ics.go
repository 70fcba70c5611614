// Package calendar renders iCalendar feeds.
package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const productID = "-//perfhub//tasks//EN"

// Event is an all-day entry on Date.
type Event struct {
	UID         string
	Summary     string
	Description string
	Date        time.Time
	Priority    int
	Updated     time.Time
}

// Feed is a named calendar of events.
type Feed struct {
	Name   string
	Events []Event
}

// Build returns the feed as a calendar object.
func Build(feed Feed, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if feed.Name != "" {
		cal.SetName(feed.Name)
		cal.SetXWRCalName(feed.Name)
	}

	for _, e := range feed.Events {
		event := cal.AddEvent(e.UID)
		event.SetDtStampTime(now)
		event.SetSummary(e.Summary)
		if e.Description != "" {
			event.SetDescription(e.Description)
		}
		day := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if e.Priority > 0 {
			event.SetProperty(ics.ComponentPropertyPriority, fmt.Sprint(e.Priority))
		}
		if !e.Updated.IsZero() {
			event.SetModifiedAt(e.Updated)
		}
	}
	return cal
}

// Write serializes the feed to w.
func Write(w io.Writer, feed Feed, now time.Time) error {
	_, err := io.WriteString(w, Build(feed, now).Serialize())
	return err
}
