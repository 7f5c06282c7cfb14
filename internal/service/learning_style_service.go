package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/content"
	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type styleLibrary interface {
	AssessmentQuestions() []models.AssessmentQuestion
	Style(style models.LearningStyle) (content.StyleGuide, bool)
}

// AssessmentRequest holds one chosen style per question, in question order.
type AssessmentRequest struct {
	Answers []models.LearningStyle `json:"answers" validate:"required"`
}

// AssessmentOutcome is the scored assessment plus the matching guidance.
type AssessmentOutcome struct {
	models.AssessmentResult
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Tips        []string `json:"tips"`
}

// LearningStyleService scores the learning-style assessment.
type LearningStyleService struct {
	profiles  profileRepository
	library   styleLibrary
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLearningStyleService constructs the service.
func NewLearningStyleService(profiles profileRepository, library styleLibrary, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *LearningStyleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearningStyleService{
		profiles:  profiles,
		library:   library,
		dashboard: dashboard,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Questions lists the assessment.
func (s *LearningStyleService) Questions() []models.AssessmentQuestion {
	return s.library.AssessmentQuestions()
}

// Submit scores the answers and stores the result on the profile.
func (s *LearningStyleService) Submit(ctx context.Context, userID string, req AssessmentRequest) (*AssessmentOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	questions := s.library.AssessmentQuestions()
	if len(req.Answers) != len(questions) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("expected %d answers, got %d", len(questions), len(req.Answers)))
	}
	for i, answer := range req.Answers {
		if !answer.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("answer %d has unknown style %q", i+1, answer))
		}
	}

	result := ScoreAssessment(req.Answers, s.now())
	blob, err := json.Marshal(result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode assessment")
	}
	if err := s.profiles.UpdateLearningStyle(ctx, userID, result.DominantStyle, blob); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save learning style")
	}
	if s.dashboard != nil {
		s.dashboard.InvalidateUser(ctx, userID)
	}
	s.logger.Info("learning style assessed", zap.String("user_id", userID), zap.String("style", string(result.DominantStyle)))

	outcome := &AssessmentOutcome{AssessmentResult: result}
	if guide, ok := s.library.Style(result.DominantStyle); ok {
		outcome.Label = guide.Label
		outcome.Description = guide.Description
		outcome.Tips = guide.ProfileTips
	}
	return outcome, nil
}

// ScoreAssessment counts answers per style and picks the dominant one.
// Ties go to the style listed later in models.LearningStyles.
func ScoreAssessment(answers []models.LearningStyle, at time.Time) models.AssessmentResult {
	counts := make(map[models.LearningStyle]int, len(models.LearningStyles))
	for _, style := range models.LearningStyles {
		counts[style] = 0
	}
	for _, a := range answers {
		counts[a]++
	}

	dominant := models.LearningStyles[0]
	for _, style := range models.LearningStyles[1:] {
		if !(counts[dominant] > counts[style]) {
			dominant = style
		}
	}

	percentages := make(map[models.LearningStyle]int, len(counts))
	for style, n := range counts {
		if len(answers) == 0 {
			percentages[style] = 0
			continue
		}
		percentages[style] = int(math.Round(float64(n) / float64(len(answers)) * 100))
	}

	return models.AssessmentResult{
		DominantStyle:    dominant,
		StylePercentages: percentages,
		RawCounts:        counts,
		AssessmentDate:   at,
		TotalQuestions:   len(answers),
	}
}
