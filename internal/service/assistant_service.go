package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/gemini"
)

const noAssistantResponse = "No response from Gemini."

// TextGenerator completes a single text prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// AssistantRequest is a free-form study question.
type AssistantRequest struct {
	Prompt        string               `json:"prompt" validate:"required,max=8000"`
	LearningStyle models.LearningStyle `json:"learning_style" validate:"omitempty,max=32"`
	UserName      string               `json:"user_name" validate:"max=100"`
}

// AssistantReply is the completion returned to the student.
type AssistantReply struct {
	Result string `json:"result"`
}

// AssistantService answers study questions with a personalised prompt.
type AssistantService struct {
	llm       TextGenerator
	library   styleLibrary
	recorder  *AIResultRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssistantService constructs the service.
func NewAssistantService(llm TextGenerator, library styleLibrary, recorder *AIResultRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssistantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{llm: llm, library: library, recorder: recorder, metrics: metrics, validator: validate, logger: logger}
}

// Ask builds the StudyMate prompt and returns the model's answer.
func (s *AssistantService) Ask(ctx context.Context, userID string, req AssistantRequest) (*AssistantReply, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "prompt is required")
	}

	prompt := s.buildPrompt(req)
	text, err := callModel(ctx, s.llm, s.metrics, models.AIResultAssistant, prompt)
	if err != nil {
		s.logger.Error("assistant completion failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = noAssistantResponse
	}

	s.recorder.Record(models.AIResult{
		UserID:   userID,
		Kind:     models.AIResultAssistant,
		Prompt:   req.Prompt,
		Response: text,
		Model:    s.llm.Model(),
	})
	return &AssistantReply{Result: text}, nil
}

func (s *AssistantService) buildPrompt(req AssistantRequest) string {
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = "a student"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a helpful study assistant named StudyMate. You're helping %s with their studies.", name)
	if req.LearningStyle != "" && s.library != nil {
		if guide, ok := s.library.Style(req.LearningStyle); ok {
			sb.WriteString(" ")
			sb.WriteString(guide.AssistantGuidance)
		}
	}
	sb.WriteString(" Always provide practical, actionable advice tailored to their learning style. Be encouraging and supportive.")
	fmt.Fprintf(&sb, "\n\nStudent Question: %s\n\nPlease provide a helpful, personalized response:", req.Prompt)
	return sb.String()
}

// callModel runs one completion, records its latency and maps failures
// onto API errors.
func callModel(ctx context.Context, llm TextGenerator, metrics *MetricsService, kind models.AIResultKind, prompt string) (string, error) {
	start := time.Now()
	text, err := llm.Generate(ctx, prompt)
	metrics.ObserveLLMCall(kind, time.Since(start), err)
	if err != nil {
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Gemini API key not configured")
		}
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Gemini API request failed")
	}
	return text, nil
}
