package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type assistantServiceStub struct {
	req service.AssistantRequest
	err error
}

func (s *assistantServiceStub) Ask(ctx context.Context, userID string, req service.AssistantRequest) (*service.AssistantReply, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &service.AssistantReply{Result: "Use mind maps."}, nil
}

type historyStub struct {
	limit int
}

func (s *historyStub) Recent(ctx context.Context, userID string, limit int) ([]models.AIResult, error) {
	s.limit = limit
	return []models.AIResult{{ID: "r1", UserID: userID, Kind: models.AIResultAssistant}}, nil
}

func TestAssistantHandlerGenerate(t *testing.T) {
	svc := &assistantServiceStub{}
	h := NewAssistantHandler(svc, nil)
	c, w := newTestContext(http.MethodPost, "/ai/generate", strings.NewReader(`{"prompt":"Help me","learning_style":"visual","user_name":"Ada"}`))

	h.Generate(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, models.StyleVisual, svc.req.LearningStyle)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"result":"Use mind maps."`)
}

func TestAssistantHandlerUpstreamFailure(t *testing.T) {
	h := NewAssistantHandler(&assistantServiceStub{err: appErrors.Clone(appErrors.ErrUpstream, "Gemini API request failed")}, nil)
	c, w := newTestContext(http.MethodPost, "/ai/generate", strings.NewReader(`{"prompt":"Help me"}`))

	h.Generate(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusBadGateway)
}

func TestAssistantHandlerHistory(t *testing.T) {
	history := &historyStub{}
	h := NewAssistantHandler(&assistantServiceStub{}, history)

	c, w := newTestContext(http.MethodGet, "/ai/results?limit=5", nil)
	h.History(withUser(c, "user-1"))
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, 5, history.limit)

	c, w = newTestContext(http.MethodGet, "/ai/results?limit=500", nil)
	h.History(withUser(c, "user-1"))
	requireStatus(t, w, http.StatusBadRequest)
}

func TestAssistantHandlerHistoryDisabled(t *testing.T) {
	h := NewAssistantHandler(&assistantServiceStub{}, nil)
	c, w := newTestContext(http.MethodGet, "/ai/results", nil)

	h.History(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusNotFound)
}
