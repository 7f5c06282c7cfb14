package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/response"
)

type assistantService interface {
	Ask(ctx context.Context, userID string, req service.AssistantRequest) (*service.AssistantReply, error)
}

type aiHistory interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.AIResult, error)
}

// AssistantHandler exposes the study assistant.
type AssistantHandler struct {
	service assistantService
	history aiHistory
}

// NewAssistantHandler constructs the handler. history may be nil when
// results are not persisted.
func NewAssistantHandler(service assistantService, history aiHistory) *AssistantHandler {
	return &AssistantHandler{service: service, history: history}
}

// Generate godoc
// @Summary Ask the study assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body service.AssistantRequest true "Prompt"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /ai/generate [post]
func (h *AssistantHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.AssistantRequest
	if !bindJSON(c, &req, "prompt is required") {
		return
	}
	reply, err := h.service.Ask(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, reply)
}

// History godoc
// @Summary Recent assistant and document replies
// @Tags Assistant
// @Produce json
// @Param limit query int false "Max results (default 20)"
// @Success 200 {object} response.Envelope
// @Router /ai/results [get]
func (h *AssistantHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.history == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "ai result history is disabled"))
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}
	results, err := h.history.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, results)
}
