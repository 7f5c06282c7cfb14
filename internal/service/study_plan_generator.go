package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

// PlanHorizonMonths is how far past the start date a plan reaches.
const PlanHorizonMonths = 3

const tasksPerEvent = 2

var (
	englishTasks = []string{"Reading comprehension practice", "Essay writing", "Grammar review"}
	mathTasks    = []string{"Problem solving practice", "Formula review", "Past paper questions"}
	genericTasks = []string{"Review notes", "Practice questions", "Summary writing"}
)

// TasksForSubject picks the task list by keyword. English wins over Math
// when a subject names both.
func TasksForSubject(subject string) []string {
	source := genericTasks
	switch {
	case strings.Contains(subject, "English"):
		source = englishTasks
	case strings.Contains(subject, "Math"):
		source = mathTasks
	}
	out := make([]string, tasksPerEvent)
	copy(out, source[:tasksPerEvent])
	return out
}

// StudyEventID builds the identifier of the event at rotation index for date.
func StudyEventID(date string, index int) string {
	return fmt.Sprintf("study-%s-%d", date, index)
}

// GenerateStudyPlan walks every date from start to start plus the horizon,
// inclusive, and assigns subjects round-robin to available days. Blocked
// dates and unscheduled weekdays do not advance the rotation. The result
// depends only on its inputs.
func GenerateStudyPlan(prefs models.StudyPreferences, start time.Time) ([]models.StudyEvent, error) {
	if len(prefs.Subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "at least one subject is required to generate a plan")
	}

	first := truncateToDate(start)
	last := first.AddDate(0, PlanHorizonMonths, 0)

	blocked := make(map[string]struct{}, len(prefs.UnavailableDates))
	for _, d := range prefs.UnavailableDates {
		blocked[d] = struct{}{}
	}

	events := make([]models.StudyEvent, 0)
	index := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateLayout)
		if _, ok := blocked[date]; ok {
			continue
		}
		window, ok := prefs.Availability[models.WeekdayOf(day)]
		if !ok {
			continue
		}
		subject := prefs.Subjects[index%len(prefs.Subjects)]
		events = append(events, models.StudyEvent{
			ID:       StudyEventID(date, index),
			Date:     date,
			Subject:  subject,
			Tasks:    TasksForSubject(subject),
			TimeSlot: window.String(),
			Duration: prefs.StudyDuration,
		})
		index++
	}
	return events, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
