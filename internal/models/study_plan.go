package models

import (
	"sort"
	"strings"
	"time"
)

// Weekday names a day of the week as stored in preferences.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists weekdays Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Default availability window applied when a weekday is switched on.
const (
	DefaultWindowStart = "09:00"
	DefaultWindowEnd   = "17:00"
)

// WeekdayOf returns the Weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String())
}

// ParseWeekday accepts a weekday name in any case.
func ParseWeekday(raw string) (Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(raw)) {
			return d, true
		}
	}
	return "", false
}

// TimeWeekday converts to the standard library weekday.
func (d Weekday) TimeWeekday() time.Weekday {
	for i, name := range []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday} {
		if name == d {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}

// TimeWindow is a time-of-day range in "HH:MM" form.
type TimeWindow struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// String renders the window as shown on study events.
func (w TimeWindow) String() string {
	return w.StartTime + " - " + w.EndTime
}

// AvailabilitySlot is a weekday together with its window.
type AvailabilitySlot struct {
	Day Weekday `json:"day"`
	TimeWindow
}

// StudyPreferences drives plan generation. Availability holds at most one
// window per weekday; a missing key means the weekday is a day off.
type StudyPreferences struct {
	UnavailableDates []string               `json:"unavailable_dates"`
	Availability     map[Weekday]TimeWindow `json:"availability"`
	StudyDuration    int                    `json:"study_duration"`
	Subjects         []string               `json:"subjects"`
}

// DefaultStudyPreferences returns the starting preferences for a new user.
func DefaultStudyPreferences() StudyPreferences {
	availability := make(map[Weekday]TimeWindow, 5)
	for _, d := range []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday} {
		availability[d] = TimeWindow{StartTime: DefaultWindowStart, EndTime: DefaultWindowEnd}
	}
	return StudyPreferences{
		UnavailableDates: []string{},
		Availability:     availability,
		StudyDuration:    2,
		Subjects:         []string{"English Paper 1", "Maths Paper 1"},
	}
}

// Clone returns a deep copy.
func (p StudyPreferences) Clone() StudyPreferences {
	out := StudyPreferences{
		UnavailableDates: append([]string{}, p.UnavailableDates...),
		Availability:     make(map[Weekday]TimeWindow, len(p.Availability)),
		StudyDuration:    p.StudyDuration,
		Subjects:         append([]string{}, p.Subjects...),
	}
	for k, v := range p.Availability {
		out.Availability[k] = v
	}
	return out
}

// AddUnavailableDate appends date unless already present.
func (p *StudyPreferences) AddUnavailableDate(date string) {
	if p.IsOverride(date) {
		return
	}
	p.UnavailableDates = append(p.UnavailableDates, date)
}

// RemoveUnavailableDate drops date if present.
func (p *StudyPreferences) RemoveUnavailableDate(date string) {
	out := p.UnavailableDates[:0]
	for _, d := range p.UnavailableDates {
		if d != date {
			out = append(out, d)
		}
	}
	p.UnavailableDates = out
}

// IsOverride reports whether date is explicitly blocked.
func (p StudyPreferences) IsOverride(date string) bool {
	for _, d := range p.UnavailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// SetAvailability replaces the window of an existing slot. Weekdays without
// a slot are left untouched. Range checks belong to the caller.
func (p *StudyPreferences) SetAvailability(day Weekday, start, end string) {
	if _, ok := p.Availability[day]; !ok {
		return
	}
	p.Availability[day] = TimeWindow{StartTime: start, EndTime: end}
}

// ToggleWeekdayAvailability switches a weekday on with the default window,
// keeping an existing window, or off by removing its slot.
func (p *StudyPreferences) ToggleWeekdayAvailability(day Weekday, enabled bool) {
	if !enabled {
		delete(p.Availability, day)
		return
	}
	if p.Availability == nil {
		p.Availability = make(map[Weekday]TimeWindow)
	}
	if _, ok := p.Availability[day]; !ok {
		p.Availability[day] = TimeWindow{StartTime: DefaultWindowStart, EndTime: DefaultWindowEnd}
	}
}

// AddSubject appends name unless already present.
func (p *StudyPreferences) AddSubject(name string) {
	for _, s := range p.Subjects {
		if s == name {
			return
		}
	}
	p.Subjects = append(p.Subjects, name)
}

// RemoveSubject drops name if present, keeping rotation order.
func (p *StudyPreferences) RemoveSubject(name string) {
	out := p.Subjects[:0]
	for _, s := range p.Subjects {
		if s != name {
			out = append(out, s)
		}
	}
	p.Subjects = out
}

// SetDailyDuration stores hours as given.
func (p *StudyPreferences) SetDailyDuration(hours int) {
	p.StudyDuration = hours
}

// Slots lists availability Monday first.
func (p StudyPreferences) Slots() []AvailabilitySlot {
	slots := make([]AvailabilitySlot, 0, len(p.Availability))
	for day, window := range p.Availability {
		slots = append(slots, AvailabilitySlot{Day: day, TimeWindow: window})
	}
	order := make(map[Weekday]int, len(Weekdays))
	for i, d := range Weekdays {
		order[d] = i
	}
	sort.Slice(slots, func(i, j int) bool { return order[slots[i].Day] < order[slots[j].Day] })
	return slots
}

// StudyEvent is one scheduled study session.
type StudyEvent struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"`
	Subject  string   `json:"subject"`
	Tasks    []string `json:"tasks"`
	TimeSlot string   `json:"time_slot"`
	Duration int      `json:"duration"`
}

// Unavailability reasons reported on calendar cells.
const (
	ReasonExplicitOverride    = "explicit override"
	ReasonWeekdayNotScheduled = "weekday not scheduled"
)

// DayCell is one cell of a month grid. Blank cells pad the first week.
type DayCell struct {
	Blank       bool         `json:"blank"`
	Date        string       `json:"date,omitempty"`
	Day         int          `json:"day,omitempty"`
	Unavailable bool         `json:"unavailable"`
	Reason      string       `json:"reason,omitempty"`
	Events      []StudyEvent `json:"events,omitempty"`
	Overflow    int          `json:"overflow,omitempty"`
}

// MonthGrid is a Sunday-first month layout.
type MonthGrid struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Cells []DayCell `json:"cells"`
}

// StudyPlan is the last generated schedule of a user.
type StudyPlan struct {
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	GeneratedAt time.Time    `json:"generated_at"`
	Events      []StudyEvent `json:"events"`
}

// ExportFormat enumerates plan export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatICS ExportFormat = "ics"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
