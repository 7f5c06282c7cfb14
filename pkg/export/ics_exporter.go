package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// CalendarEvent is a single timed entry in an iCalendar export.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Categories  []string
}

// WeeklyWindow is a recurring weekly block, rendered as an RRULE series.
type WeeklyWindow struct {
	UID     string
	Summary string
	Weekday time.Weekday
	// Start and End carry the first occurrence.
	Start time.Time
	End   time.Time
	Until time.Time
	// Except lists occurrence dates to drop from the series.
	Except []time.Time
}

// Calendar groups events for export.
type Calendar struct {
	Name      string
	Events    []CalendarEvent
	Recurring []WeeklyWindow
	Stamp     time.Time
}

// ICSExporter renders calendars as RFC 5545 documents.
type ICSExporter struct {
	productID string
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{productID: "-//StudyMate//Study Plan//EN"}
}

// ContentType reports the MIME type of rendered output.
func (e *ICSExporter) ContentType() string { return "text/calendar" }

// Render serialises the calendar.
func (e *ICSExporter) Render(data Calendar) ([]byte, error) {
	stamp := data.Stamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.productID)
	if data.Name != "" {
		cal.SetXWRCalName(data.Name)
	}

	for _, ev := range data.Events {
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("event %s ends before it starts", ev.UID)
		}
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(ev.Start)
		vevent.SetEndAt(ev.End)
		vevent.SetSummary(ev.Summary)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		for _, category := range ev.Categories {
			vevent.AddCategory(category)
		}
	}

	for _, window := range data.Recurring {
		rule, err := weeklyRule(window)
		if err != nil {
			return nil, err
		}
		vevent := cal.AddEvent(window.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(window.Start)
		vevent.SetEndAt(window.End)
		vevent.SetSummary(window.Summary)
		vevent.AddRrule(rule.OrigOptions.RRuleString())
		for _, ex := range window.Except {
			occurrence := time.Date(ex.Year(), ex.Month(), ex.Day(), window.Start.Hour(), window.Start.Minute(), 0, 0, window.Start.Location())
			vevent.AddExdate(occurrence.UTC().Format("20060102T150405Z"))
		}
	}

	var sb strings.Builder
	if err := cal.SerializeTo(&sb); err != nil {
		return nil, fmt.Errorf("render ics: %w", err)
	}
	return []byte(sb.String()), nil
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

func weeklyRule(window WeeklyWindow) (*rrule.RRule, error) {
	if !window.End.After(window.Start) {
		return nil, fmt.Errorf("window %s ends before it starts", window.UID)
	}
	if window.Start.Weekday() != window.Weekday {
		return nil, fmt.Errorf("window %s starts on %s, want %s", window.UID, window.Start.Weekday(), window.Weekday)
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   window.Start.UTC(),
		Until:     window.Until.UTC(),
		Byweekday: []rrule.Weekday{rruleWeekdays[window.Weekday]},
	})
	if err != nil {
		return nil, fmt.Errorf("build weekly rule for %s: %w", window.UID, err)
	}
	return rule, nil
}
