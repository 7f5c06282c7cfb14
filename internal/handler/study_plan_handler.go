package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	"github.com/noah-isme/studymate-api/pkg/response"
)

type studyPlanService interface {
	GetPreferences(ctx context.Context, userID string) (models.StudyPreferences, error)
	ReplacePreferences(ctx context.Context, userID string, req service.ReplacePreferencesRequest) (models.StudyPreferences, error)
	AddUnavailableDate(ctx context.Context, userID string, req service.UnavailableDateRequest) (models.StudyPreferences, error)
	RemoveUnavailableDate(ctx context.Context, userID, date string) (models.StudyPreferences, error)
	SetAvailability(ctx context.Context, userID, weekday string, req service.AvailabilityRequest) (models.StudyPreferences, error)
	ToggleWeekday(ctx context.Context, userID, weekday string, req service.ToggleWeekdayRequest) (models.StudyPreferences, error)
	AddSubject(ctx context.Context, userID string, req service.SubjectRequest) (models.StudyPreferences, error)
	RemoveSubject(ctx context.Context, userID, name string) (models.StudyPreferences, error)
	SetDailyDuration(ctx context.Context, userID string, req service.DurationRequest) (models.StudyPreferences, error)
	Generate(ctx context.Context, userID string, req service.GeneratePlanRequest) (*models.StudyPlan, error)
	Plan(ctx context.Context, userID string) (*models.StudyPlan, error)
	EventsForDate(ctx context.Context, userID, date string) ([]models.StudyEvent, error)
	MonthGrid(ctx context.Context, userID string, year, month int) (*models.MonthGrid, error)
	Export(ctx context.Context, userID, format string) (*models.ExportFile, error)
}

// StudyPlanHandler exposes study preferences and the generated plan.
type StudyPlanHandler struct {
	service studyPlanService
}

// NewStudyPlanHandler constructs the handler.
func NewStudyPlanHandler(service studyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{service: service}
}

// GetPreferences godoc
// @Summary Get study preferences
// @Tags StudyPlan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences [get]
func (h *StudyPlanHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	h.preferences(c, prefs, err)
}

// ReplacePreferences godoc
// @Summary Replace study preferences
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body service.ReplacePreferencesRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences [put]
func (h *StudyPlanHandler) ReplacePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.ReplacePreferencesRequest
	if !bindJSON(c, &req, "invalid preferences payload") {
		return
	}
	prefs, err := h.service.ReplacePreferences(c.Request.Context(), userID, req)
	h.preferences(c, prefs, err)
}

// AddUnavailableDate godoc
// @Summary Block a date
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body service.UnavailableDateRequest true "Date"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/unavailable-dates [post]
func (h *StudyPlanHandler) AddUnavailableDate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.UnavailableDateRequest
	if !bindJSON(c, &req, "invalid date payload") {
		return
	}
	prefs, err := h.service.AddUnavailableDate(c.Request.Context(), userID, req)
	h.preferences(c, prefs, err)
}

// RemoveUnavailableDate godoc
// @Summary Unblock a date
// @Tags StudyPlan
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/unavailable-dates/{date} [delete]
func (h *StudyPlanHandler) RemoveUnavailableDate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	prefs, err := h.service.RemoveUnavailableDate(c.Request.Context(), userID, c.Param("date"))
	h.preferences(c, prefs, err)
}

// SetAvailability godoc
// @Summary Change a weekday window
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param weekday path string true "Weekday"
// @Param payload body service.AvailabilityRequest true "Window"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/availability/{weekday} [put]
func (h *StudyPlanHandler) SetAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.AvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	prefs, err := h.service.SetAvailability(c.Request.Context(), userID, c.Param("weekday"), req)
	h.preferences(c, prefs, err)
}

// ToggleWeekday godoc
// @Summary Enable or disable a weekday
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param weekday path string true "Weekday"
// @Param payload body service.ToggleWeekdayRequest true "Toggle"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/availability/{weekday}/toggle [post]
func (h *StudyPlanHandler) ToggleWeekday(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.ToggleWeekdayRequest
	if !bindJSON(c, &req, "invalid toggle payload") {
		return
	}
	prefs, err := h.service.ToggleWeekday(c.Request.Context(), userID, c.Param("weekday"), req)
	h.preferences(c, prefs, err)
}

// AddSubject godoc
// @Summary Add a subject
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body service.SubjectRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/subjects [post]
func (h *StudyPlanHandler) AddSubject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.SubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	prefs, err := h.service.AddSubject(c.Request.Context(), userID, req)
	h.preferences(c, prefs, err)
}

// RemoveSubject godoc
// @Summary Remove a subject
// @Tags StudyPlan
// @Produce json
// @Param name path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/subjects/{name} [delete]
func (h *StudyPlanHandler) RemoveSubject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	prefs, err := h.service.RemoveSubject(c.Request.Context(), userID, c.Param("name"))
	h.preferences(c, prefs, err)
}

// SetDuration godoc
// @Summary Set daily study hours
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body service.DurationRequest true "Hours"
// @Success 200 {object} response.Envelope
// @Router /study-plan/preferences/duration [put]
func (h *StudyPlanHandler) SetDuration(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.DurationRequest
	if !bindJSON(c, &req, "invalid duration payload") {
		return
	}
	prefs, err := h.service.SetDailyDuration(c.Request.Context(), userID, req)
	h.preferences(c, prefs, err)
}

// Generate godoc
// @Summary Generate a study plan
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body service.GeneratePlanRequest false "Start date"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /study-plan/generate [post]
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.GeneratePlanRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid generate payload") {
		return
	}
	plan, err := h.service.Generate(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, plan)
}

// Events godoc
// @Summary List planned events
// @Tags StudyPlan
// @Produce json
// @Param date query string false "Only events on this date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /study-plan/events [get]
func (h *StudyPlanHandler) Events(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		events, err := h.service.EventsForDate(c.Request.Context(), userID, date)
		if err != nil {
			response.Error(c, err)
			return
		}
		respond(c, http.StatusOK, events)
		return
	}
	plan, err := h.service.Plan(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, plan)
}

// Calendar godoc
// @Summary Month grid of the plan
// @Tags StudyPlan
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Router /study-plan/calendar [get]
func (h *StudyPlanHandler) Calendar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	grid, err := h.service.MonthGrid(c.Request.Context(), userID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, grid)
}

// Export godoc
// @Summary Download the plan
// @Tags StudyPlan
// @Produce text/csv,application/pdf,text/calendar
// @Param format query string false "csv, pdf or ics"
// @Success 200 {file} file
// @Router /study-plan/export [get]
func (h *StudyPlanHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), userID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *StudyPlanHandler) preferences(c *gin.Context, prefs models.StudyPreferences, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, prefs)
}
