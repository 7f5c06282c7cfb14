package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	"github.com/noah-isme/studymate-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, req service.UpdateProfileRequest) (*models.Profile, error)
}

type learningStyleService interface {
	Questions() []models.AssessmentQuestion
	Submit(ctx context.Context, userID string, req service.AssessmentRequest) (*service.AssessmentOutcome, error)
}

// ProfileHandler exposes the profile and the learning-style assessment.
type ProfileHandler struct {
	profiles   profileService
	assessment learningStyleService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles profileService, assessment learningStyleService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, assessment: assessment}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// Update godoc
// @Summary Update name and school
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// Questions godoc
// @Summary Learning-style assessment questions
// @Tags LearningStyle
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /learning-style/questions [get]
func (h *ProfileHandler) Questions(c *gin.Context) {
	respond(c, http.StatusOK, h.assessment.Questions())
}

// SubmitAssessment godoc
// @Summary Score the assessment
// @Tags LearningStyle
// @Accept json
// @Produce json
// @Param payload body service.AssessmentRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Router /learning-style/assessment [post]
func (h *ProfileHandler) SubmitAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.AssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	outcome, err := h.assessment.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, outcome)
}
