package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyPreferencesUnavailableDates(t *testing.T) {
	prefs := DefaultStudyPreferences()
	prefs.AddUnavailableDate("2024-01-01")
	prefs.AddUnavailableDate("2024-01-01")
	prefs.AddUnavailableDate("2024-01-05")
	assert.Equal(t, []string{"2024-01-01", "2024-01-05"}, prefs.UnavailableDates)

	prefs.RemoveUnavailableDate("2024-02-01")
	prefs.RemoveUnavailableDate("2024-01-01")
	assert.Equal(t, []string{"2024-01-05"}, prefs.UnavailableDates)
	assert.True(t, prefs.IsOverride("2024-01-05"))
}

func TestStudyPreferencesSetAvailabilityOnlyReplacesExistingSlot(t *testing.T) {
	prefs := DefaultStudyPreferences()
	prefs.SetAvailability(Monday, "08:00", "12:00")
	prefs.SetAvailability(Saturday, "10:00", "11:00")

	assert.Equal(t, TimeWindow{StartTime: "08:00", EndTime: "12:00"}, prefs.Availability[Monday])
	_, ok := prefs.Availability[Saturday]
	assert.False(t, ok)
}

func TestStudyPreferencesToggleWeekday(t *testing.T) {
	prefs := DefaultStudyPreferences()
	prefs.SetAvailability(Monday, "08:00", "12:00")

	prefs.ToggleWeekdayAvailability(Monday, true)
	assert.Equal(t, "08:00", prefs.Availability[Monday].StartTime)

	prefs.ToggleWeekdayAvailability(Saturday, true)
	prefs.ToggleWeekdayAvailability(Saturday, true)
	assert.Equal(t, TimeWindow{StartTime: DefaultWindowStart, EndTime: DefaultWindowEnd}, prefs.Availability[Saturday])

	prefs.ToggleWeekdayAvailability(Friday, false)
	prefs.ToggleWeekdayAvailability(Friday, false)
	_, ok := prefs.Availability[Friday]
	assert.False(t, ok)
	assert.Len(t, prefs.Availability, 5)
}

func TestStudyPreferencesSubjects(t *testing.T) {
	prefs := DefaultStudyPreferences()
	prefs.AddSubject("History")
	prefs.AddSubject("History")
	assert.Equal(t, []string{"English Paper 1", "Maths Paper 1", "History"}, prefs.Subjects)

	prefs.RemoveSubject("English Paper 1")
	prefs.RemoveSubject("Biology")
	assert.Equal(t, []string{"Maths Paper 1", "History"}, prefs.Subjects)
}

func TestStudyPreferencesCloneIsIndependent(t *testing.T) {
	prefs := DefaultStudyPreferences()
	cp := prefs.Clone()
	cp.AddSubject("History")
	cp.ToggleWeekdayAvailability(Monday, false)

	assert.Len(t, prefs.Subjects, 2)
	_, ok := prefs.Availability[Monday]
	assert.True(t, ok)
}

func TestStudyPreferencesSlotsAreOrdered(t *testing.T) {
	prefs := DefaultStudyPreferences()
	prefs.ToggleWeekdayAvailability(Sunday, true)
	slots := prefs.Slots()
	require.Len(t, slots, 6)
	assert.Equal(t, Monday, slots[0].Day)
	assert.Equal(t, Sunday, slots[5].Day)
}

func TestWeekdayConversions(t *testing.T) {
	day, ok := ParseWeekday(" tuesday ")
	require.True(t, ok)
	assert.Equal(t, Tuesday, day)
	assert.Equal(t, time.Tuesday, day.TimeWeekday())

	_, ok = ParseWeekday("someday")
	assert.False(t, ok)

	assert.Equal(t, Monday, WeekdayOf(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
