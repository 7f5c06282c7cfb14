package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/export"
)

type datasetRenderer interface {
	ContentType() string
	Render(data export.Dataset) ([]byte, error)
}

type calendarRenderer interface {
	ContentType() string
	Render(data export.Calendar) ([]byte, error)
}

type planExporters struct {
	csv datasetRenderer
	pdf datasetRenderer
	ics calendarRenderer
}

func defaultPlanExporters() planExporters {
	return planExporters{
		csv: export.NewCSVExporter(),
		pdf: export.NewPDFExporter(),
		ics: export.NewICSExporter(),
	}
}

var planExportHeaders = []string{"Date", "Day", "Subject", "Time", "Hours", "Tasks"}

// Export renders the current plan in the requested format.
func (s *StudyPlanService) Export(ctx context.Context, userID, format string) (*models.ExportFile, error) {
	plan, prefs, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}

	base := "study-plan-" + plan.StartDate
	var (
		body        []byte
		contentType string
		ext         string
	)
	switch models.ExportFormat(strings.ToLower(strings.TrimSpace(format))) {
	case models.ExportFormatCSV, "":
		body, err = s.exporters.csv.Render(planDataset(plan))
		contentType, ext = s.exporters.csv.ContentType(), "csv"
	case models.ExportFormatPDF:
		body, err = s.exporters.pdf.Render(planDataset(plan))
		contentType, ext = s.exporters.pdf.ContentType(), "pdf"
	case models.ExportFormatICS:
		var cal export.Calendar
		cal, err = planCalendar(plan, prefs)
		if err == nil {
			body, err = s.exporters.ics.Render(cal)
		}
		contentType, ext = s.exporters.ics.ContentType(), "ics"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, pdf, ics")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render study plan")
	}
	return &models.ExportFile{Filename: base + "." + ext, ContentType: contentType, Body: body}, nil
}

func planDataset(plan *models.StudyPlan) export.Dataset {
	rows := make([]map[string]string, 0, len(plan.Events))
	for _, ev := range plan.Events {
		day, _ := time.Parse(models.DateLayout, ev.Date)
		rows = append(rows, map[string]string{
			"Date":    ev.Date,
			"Day":     day.Weekday().String(),
			"Subject": ev.Subject,
			"Time":    ev.TimeSlot,
			"Hours":   strconv.Itoa(ev.Duration),
			"Tasks":   strings.Join(ev.Tasks, "; "),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Study Plan %s to %s", plan.StartDate, plan.EndDate),
		Headers: planExportHeaders,
		Rows:    rows,
		Widths:  map[string]float64{"Subject": 2, "Time": 1.5, "Hours": 0.6, "Tasks": 4},
	}
}

// planCalendar maps events to timed entries and each availability slot to
// a weekly series running to the end of the plan, with blocked dates as
// exceptions.
func planCalendar(plan *models.StudyPlan, prefs models.StudyPreferences) (export.Calendar, error) {
	cal := export.Calendar{Name: "Study Plan", Stamp: plan.GeneratedAt}

	for _, ev := range plan.Events {
		start, end, err := eventBounds(ev)
		if err != nil {
			return export.Calendar{}, err
		}
		cal.Events = append(cal.Events, export.CalendarEvent{
			UID:         ev.ID + "@studymate",
			Summary:     ev.Subject,
			Description: strings.Join(ev.Tasks, "\n"),
			Start:       start,
			End:         end,
			Categories:  []string{"Study"},
		})
	}

	first, err := time.Parse(models.DateLayout, plan.StartDate)
	if err != nil {
		return export.Calendar{}, fmt.Errorf("parse plan start: %w", err)
	}
	last, err := time.Parse(models.DateLayout, plan.EndDate)
	if err != nil {
		return export.Calendar{}, fmt.Errorf("parse plan end: %w", err)
	}

	for _, slot := range prefs.Slots() {
		weekday := slot.Day.TimeWeekday()
		day := first
		for day.Weekday() != weekday {
			day = day.AddDate(0, 0, 1)
		}
		if day.After(last) {
			continue
		}
		start, err := atClock(day, slot.StartTime)
		if err != nil {
			return export.Calendar{}, err
		}
		end, err := atClock(day, slot.EndTime)
		if err != nil {
			return export.Calendar{}, err
		}
		window := export.WeeklyWindow{
			UID:     "availability-" + strings.ToLower(string(slot.Day)) + "@studymate",
			Summary: "Study availability",
			Weekday: weekday,
			Start:   start,
			End:     end,
			Until:   last.Add(24*time.Hour - time.Second),
		}
		for _, blocked := range prefs.UnavailableDates {
			d, err := time.Parse(models.DateLayout, blocked)
			if err != nil || d.Weekday() != weekday || d.Before(first) || d.After(last) {
				continue
			}
			window.Except = append(window.Except, d)
		}
		cal.Recurring = append(cal.Recurring, window)
	}
	return cal, nil
}

// eventBounds starts an event at its window start and runs it for its
// duration, capped at the window end.
func eventBounds(ev models.StudyEvent) (time.Time, time.Time, error) {
	day, err := time.Parse(models.DateLayout, ev.Date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse event date %s: %w", ev.Date, err)
	}
	from, to, ok := strings.Cut(ev.TimeSlot, " - ")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("event %s has malformed time slot %q", ev.ID, ev.TimeSlot)
	}
	start, err := atClock(day, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	windowEnd, err := atClock(day, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start.Add(time.Duration(ev.Duration) * time.Hour)
	if ev.Duration <= 0 || end.After(windowEnd) {
		end = windowEnd
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
