package service

import (
	"time"

	"github.com/noah-isme/studymate-api/internal/models"
)

// maxEventsPerCell caps the events shown in a month grid cell.
const maxEventsPerCell = 2

// StudyCalendar answers calendar queries over one generated plan and the
// preferences it was read against.
type StudyCalendar struct {
	prefs  models.StudyPreferences
	byDate map[string][]models.StudyEvent
}

// NewStudyCalendar indexes events by date.
func NewStudyCalendar(prefs models.StudyPreferences, events []models.StudyEvent) *StudyCalendar {
	byDate := make(map[string][]models.StudyEvent)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}
	return &StudyCalendar{prefs: prefs, byDate: byDate}
}

// EventsForDate returns every event on date.
func (c *StudyCalendar) EventsForDate(date time.Time) []models.StudyEvent {
	events := c.byDate[date.Format(models.DateLayout)]
	out := make([]models.StudyEvent, len(events))
	copy(out, events)
	return out
}

// IsUnavailable reports whether date is blocked and why.
func (c *StudyCalendar) IsUnavailable(date time.Time) (bool, string) {
	if c.prefs.IsOverride(date.Format(models.DateLayout)) {
		return true, models.ReasonExplicitOverride
	}
	if _, ok := c.prefs.Availability[models.WeekdayOf(date)]; !ok {
		return true, models.ReasonWeekdayNotScheduled
	}
	return false, ""
}

// MonthGrid lays out a month starting on Sunday. Unavailable days carry no
// events, even when the plan predates the change that blocked them.
func (c *StudyCalendar) MonthGrid(year int, month time.Month) models.MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())

	cells := make([]models.DayCell, 0, leading+daysInMonth)
	for i := 0; i < leading; i++ {
		cells = append(cells, models.DayCell{Blank: true})
	}
	for d := 1; d <= daysInMonth; d++ {
		day := first.AddDate(0, 0, d-1)
		unavailable, reason := c.IsUnavailable(day)
		var events []models.StudyEvent
		if !unavailable {
			events = c.EventsForDate(day)
		}
		cell := models.DayCell{
			Date:        day.Format(models.DateLayout),
			Day:         d,
			Unavailable: unavailable,
			Reason:      reason,
		}
		if len(events) > maxEventsPerCell {
			cell.Overflow = len(events) - maxEventsPerCell
			events = events[:maxEventsPerCell]
		}
		cell.Events = events
		cells = append(cells, cell)
	}
	return models.MonthGrid{Year: year, Month: int(month), Cells: cells}
}
