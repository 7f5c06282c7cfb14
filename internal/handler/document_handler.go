package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/response"
)

const uploadField = "pdf"

type documentService interface {
	Upload(ctx context.Context, userID string, in service.UploadInput) (*models.Document, error)
	List(ctx context.Context, userID string) []models.Document
	Ask(ctx context.Context, userID, documentID string, req service.DocumentQuestionRequest) (*service.DocumentAnswer, error)
	GenerateTest(ctx context.Context, userID, documentID string, req service.GenerateTestRequest) (*models.PracticeTest, error)
	Test(ctx context.Context, userID, testID string) (*models.PracticeTest, error)
}

// DocumentHandler exposes PDF uploads and document prompts.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload godoc
// @Summary Upload a PDF
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF file"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "No PDF file uploaded"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	doc, err := h.service.Upload(c.Request.Context(), userID, service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, doc)
}

// List godoc
// @Summary List uploaded documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.service.List(c.Request.Context(), userID))
}

// Ask godoc
// @Summary Ask about a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.DocumentQuestionRequest true "Question"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/questions [post]
func (h *DocumentHandler) Ask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.DocumentQuestionRequest
	if !bindJSON(c, &req, "question is required") {
		return
	}
	answer, err := h.service.Ask(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, answer)
}

// GenerateTest godoc
// @Summary Generate a practice test
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.GenerateTestRequest false "Options"
// @Success 201 {object} response.Envelope
// @Router /documents/{id}/tests [post]
func (h *DocumentHandler) GenerateTest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.GenerateTestRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid test payload") {
		return
	}
	test, err := h.service.GenerateTest(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, test)
}

// Test godoc
// @Summary Fetch a generated test
// @Tags Documents
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Router /documents/tests/{id} [get]
func (h *DocumentHandler) Test(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	test, err := h.service.Test(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, test)
}
