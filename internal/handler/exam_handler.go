package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	"github.com/noah-isme/studymate-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, userID string) ([]models.Exam, error)
	Create(ctx context.Context, userID string, req service.CreateExamRequest) (*models.Exam, error)
	UpdateProgress(ctx context.Context, userID, examID string, req service.UpdateExamProgressRequest) (*models.Exam, error)
	Delete(ctx context.Context, userID, examID string) error
}

// ExamHandler exposes exam tracking.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs the handler.
func NewExamHandler(service examService) *ExamHandler {
	return &ExamHandler{service: service}
}

// List godoc
// @Summary List exams by date
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exams, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, exams)
}

// Create godoc
// @Summary Add an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRequest true "Exam"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.CreateExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, exam)
}

// UpdateProgress godoc
// @Summary Update study progress
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.UpdateExamProgressRequest true "Progress"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/progress [patch]
func (h *ExamHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.UpdateExamProgressRequest
	if !bindJSON(c, &req, "invalid progress payload") {
		return
	}
	exam, err := h.service.UpdateProgress(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, exam)
}

// Delete godoc
// @Summary Remove an exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
