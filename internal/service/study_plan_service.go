package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type studyPreferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.StudyPreferenceRecord, error)
	Upsert(ctx context.Context, record *models.StudyPreferenceRecord) error
}

// ReplacePreferencesRequest overwrites all study preferences.
type ReplacePreferencesRequest struct {
	UnavailableDates []string                     `json:"unavailable_dates" validate:"dive,datetime=2006-01-02"`
	Availability     map[string]models.TimeWindow `json:"availability" validate:"dive"`
	StudyDuration    int                          `json:"study_duration" validate:"min=1"`
	Subjects         []string                     `json:"subjects" validate:"dive,required,max=100"`
}

// UnavailableDateRequest names one calendar date.
type UnavailableDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// AvailabilityRequest sets the window of one weekday.
type AvailabilityRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// ToggleWeekdayRequest switches a weekday on or off.
type ToggleWeekdayRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SubjectRequest names a subject.
type SubjectRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// DurationRequest sets the daily study hours.
type DurationRequest struct {
	Hours int `json:"hours" validate:"min=1"`
}

// GeneratePlanRequest starts a plan on StartDate, or today when empty.
type GeneratePlanRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

// StudyPlanConfig tunes plan retention.
type StudyPlanConfig struct {
	PlanTTL time.Duration
}

// StudyPlanService manages study preferences and generated plans.
type StudyPlanService struct {
	repo      studyPreferenceRepository
	store     *planStore
	metrics   *MetricsService
	exporters planExporters
	locks     sync.Map
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudyPlanService wires the service.
func NewStudyPlanService(repo studyPreferenceRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg StudyPlanConfig) *StudyPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PlanTTL <= 0 {
		cfg.PlanTTL = 12 * time.Hour
	}
	return &StudyPlanService{
		repo:      repo,
		store:     newPlanStore(cfg.PlanTTL),
		metrics:   metrics,
		exporters: defaultPlanExporters(),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetPreferences returns stored preferences or the defaults.
func (s *StudyPlanService) GetPreferences(ctx context.Context, userID string) (models.StudyPreferences, error) {
	record, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultStudyPreferences(), nil
		}
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study preferences")
	}

	var prefs models.StudyPreferences
	if err := json.Unmarshal(record.Preferences, &prefs); err != nil {
		s.logger.Warn("stored study preferences unreadable, using defaults", zap.String("user_id", userID), zap.Error(err))
		return models.DefaultStudyPreferences(), nil
	}
	if prefs.Availability == nil {
		prefs.Availability = map[models.Weekday]models.TimeWindow{}
	}
	if prefs.UnavailableDates == nil {
		prefs.UnavailableDates = []string{}
	}
	if prefs.Subjects == nil {
		prefs.Subjects = []string{}
	}
	return prefs, nil
}

// ReplacePreferences stores a complete preferences document.
func (s *StudyPlanService) ReplacePreferences(ctx context.Context, userID string, req ReplacePreferencesRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}
	prefs := models.StudyPreferences{
		UnavailableDates: []string{},
		Availability:     make(map[models.Weekday]models.TimeWindow, len(req.Availability)),
		StudyDuration:    req.StudyDuration,
		Subjects:         []string{},
	}
	for raw, window := range req.Availability {
		day, ok := models.ParseWeekday(raw)
		if !ok {
			return models.StudyPreferences{}, appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+raw)
		}
		prefs.Availability[day] = window
	}
	for _, d := range req.UnavailableDates {
		prefs.AddUnavailableDate(d)
	}
	for _, name := range req.Subjects {
		prefs.AddSubject(name)
	}
	return prefs, s.save(ctx, userID, prefs)
}

// AddUnavailableDate blocks a date.
func (s *StudyPlanService) AddUnavailableDate(ctx context.Context, userID string, req UnavailableDateRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.AddUnavailableDate(req.Date)
		return nil
	})
}

// RemoveUnavailableDate unblocks a date.
func (s *StudyPlanService) RemoveUnavailableDate(ctx context.Context, userID, date string) (models.StudyPreferences, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.RemoveUnavailableDate(date)
		return nil
	})
}

// SetAvailability changes the window of an available weekday.
func (s *StudyPlanService) SetAvailability(ctx context.Context, userID, weekday string, req AvailabilityRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	day, ok := models.ParseWeekday(weekday)
	if !ok {
		return models.StudyPreferences{}, appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+weekday)
	}
	window := models.TimeWindow{StartTime: req.StartTime, EndTime: req.EndTime}
	if err := validateWindow(window); err != nil {
		return models.StudyPreferences{}, err
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		if _, exists := p.Availability[day]; !exists {
			return appErrors.Clone(appErrors.ErrNotFound, "no availability on "+string(day))
		}
		p.SetAvailability(day, window.StartTime, window.EndTime)
		return nil
	})
}

// ToggleWeekday enables or disables a weekday.
func (s *StudyPlanService) ToggleWeekday(ctx context.Context, userID, weekday string, req ToggleWeekdayRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}
	day, ok := models.ParseWeekday(weekday)
	if !ok {
		return models.StudyPreferences{}, appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+weekday)
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.ToggleWeekdayAvailability(day, *req.Enabled)
		return nil
	})
}

// AddSubject appends a subject to the rotation.
func (s *StudyPlanService) AddSubject(ctx context.Context, userID string, req SubjectRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject")
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.AddSubject(req.Name)
		return nil
	})
}

// RemoveSubject drops a subject from the rotation.
func (s *StudyPlanService) RemoveSubject(ctx context.Context, userID, name string) (models.StudyPreferences, error) {
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.RemoveSubject(name)
		return nil
	})
}

// SetDailyDuration sets the hours per study session.
func (s *StudyPlanService) SetDailyDuration(ctx context.Context, userID string, req DurationRequest) (models.StudyPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudyPreferences{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "study duration must be at least one hour")
	}
	return s.mutate(ctx, userID, func(p *models.StudyPreferences) error {
		p.SetDailyDuration(req.Hours)
		return nil
	})
}

// Generate builds a new plan and replaces the user's previous one.
func (s *StudyPlanService) Generate(ctx context.Context, userID string, req GeneratePlanRequest) (*models.StudyPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	start := s.now()
	if req.StartDate != "" {
		parsed, err := time.Parse(models.DateLayout, req.StartDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
		}
		start = parsed
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generate(userID, prefs, start)
}

// Plan returns the current plan, generating one from today if none exists.
func (s *StudyPlanService) Plan(ctx context.Context, userID string) (*models.StudyPlan, error) {
	plan, _, err := s.current(ctx, userID)
	return plan, err
}

// EventsForDate returns the planned events on date.
func (s *StudyPlanService) EventsForDate(ctx context.Context, userID, date string) ([]models.StudyEvent, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	plan, prefs, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewStudyCalendar(prefs, plan.Events).EventsForDate(day), nil
}

// MonthGrid lays out the plan for one month.
func (s *StudyPlanService) MonthGrid(ctx context.Context, userID string, year, month int) (*models.MonthGrid, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}
	plan, prefs, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	grid := NewStudyCalendar(prefs, plan.Events).MonthGrid(year, time.Month(month))
	return &grid, nil
}

func (s *StudyPlanService) current(ctx context.Context, userID string) (*models.StudyPlan, models.StudyPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, models.StudyPreferences{}, err
	}
	if plan, ok := s.store.Get(userID); ok {
		return plan, prefs, nil
	}
	plan, err := s.generate(userID, prefs, s.now())
	if appErrors.Is(err, appErrors.ErrPreconditionFailed) {
		// Nothing to rotate yet; the calendar still reports availability.
		return emptyPlan(s.now()), prefs, nil
	}
	if err != nil {
		return nil, models.StudyPreferences{}, err
	}
	return plan, prefs, nil
}

func emptyPlan(start time.Time) *models.StudyPlan {
	first := truncateToDate(start)
	return &models.StudyPlan{
		StartDate:   first.Format(models.DateLayout),
		EndDate:     first.AddDate(0, PlanHorizonMonths, 0).Format(models.DateLayout),
		GeneratedAt: start,
		Events:      []models.StudyEvent{},
	}
}

func (s *StudyPlanService) generate(userID string, prefs models.StudyPreferences, start time.Time) (*models.StudyPlan, error) {
	events, err := GenerateStudyPlan(prefs, start)
	if err != nil {
		return nil, err
	}
	first := truncateToDate(start)
	plan := &models.StudyPlan{
		StartDate:   first.Format(models.DateLayout),
		EndDate:     first.AddDate(0, PlanHorizonMonths, 0).Format(models.DateLayout),
		GeneratedAt: s.now(),
		Events:      events,
	}
	s.store.Save(userID, plan)
	s.metrics.ObservePlanGenerated(len(events))
	s.logger.Info("study plan generated",
		zap.String("user_id", userID),
		zap.String("start_date", plan.StartDate),
		zap.Int("events", len(events)),
	)
	return plan, nil
}

func (s *StudyPlanService) mutate(ctx context.Context, userID string, apply func(*models.StudyPreferences) error) (models.StudyPreferences, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return models.StudyPreferences{}, err
	}
	if err := apply(&prefs); err != nil {
		return models.StudyPreferences{}, err
	}
	return prefs, s.save(ctx, userID, prefs)
}

// lockUser serialises read-modify-write cycles on one user's preferences.
func (s *StudyPlanService) lockUser(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *StudyPlanService) save(ctx context.Context, userID string, prefs models.StudyPreferences) error {
	for _, slot := range prefs.Slots() {
		if err := validateWindow(slot.TimeWindow); err != nil {
			return err
		}
	}
	if prefs.StudyDuration < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "study duration must be at least one hour")
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode study preferences")
	}
	if err := s.repo.Upsert(ctx, &models.StudyPreferenceRecord{UserID: userID, Preferences: raw}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save study preferences")
	}
	return nil
}

func validateWindow(w models.TimeWindow) error {
	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start time must be HH:MM")
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "end time must be HH:MM")
	}
	if !start.Before(end) {
		return appErrors.ErrInvalidRange
	}
	return nil
}

// planStore keeps the latest plan per user in memory.
type planStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedPlan
}

type storedPlan struct {
	plan    *models.StudyPlan
	savedAt time.Time
}

func newPlanStore(ttl time.Duration) *planStore {
	return &planStore{ttl: ttl, items: make(map[string]storedPlan)}
}

func (s *planStore) Save(userID string, plan *models.StudyPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[userID] = storedPlan{plan: plan, savedAt: time.Now()}
}

func (s *planStore) Get(userID string) (*models.StudyPlan, bool) {
	s.mu.RLock()
	entry, ok := s.items[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(entry.savedAt) > s.ttl {
		s.Delete(userID)
		return nil, false
	}
	return entry.plan, true
}

func (s *planStore) Delete(userID string) {
	s.mu.Lock()
	delete(s.items, userID)
	s.mu.Unlock()
}
