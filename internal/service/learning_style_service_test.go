package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/content"
	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

func loadLibrary(t *testing.T) *content.Library {
	t.Helper()
	lib, err := content.Load("")
	require.NoError(t, err)
	return lib
}

func TestScoreAssessmentDominantStyle(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	result := ScoreAssessment([]models.LearningStyle{
		models.StyleVisual, models.StyleVisual, models.StyleVisual,
		models.StyleAuditory, models.StyleKinesthetic,
	}, at)

	assert.Equal(t, models.StyleVisual, result.DominantStyle)
	assert.Equal(t, 60, result.StylePercentages[models.StyleVisual])
	assert.Equal(t, 20, result.StylePercentages[models.StyleAuditory])
	assert.Equal(t, 0, result.StylePercentages[models.StyleReadingWriting])
	assert.Equal(t, 3, result.RawCounts[models.StyleVisual])
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, at, result.AssessmentDate)
}

func TestScoreAssessmentTieGoesToLaterStyle(t *testing.T) {
	result := ScoreAssessment([]models.LearningStyle{
		models.StyleVisual, models.StyleVisual,
		models.StyleKinesthetic, models.StyleKinesthetic,
		models.StyleAuditory,
	}, time.Now())
	assert.Equal(t, models.StyleKinesthetic, result.DominantStyle)

	result = ScoreAssessment([]models.LearningStyle{
		models.StyleAuditory, models.StyleReadingWriting,
	}, time.Now())
	assert.Equal(t, models.StyleReadingWriting, result.DominantStyle)
	assert.Equal(t, 50, result.StylePercentages[models.StyleAuditory])
}

func TestScoreAssessmentRoundsPercentages(t *testing.T) {
	result := ScoreAssessment([]models.LearningStyle{
		models.StyleVisual, models.StyleAuditory, models.StyleKinesthetic,
	}, time.Now())
	assert.Equal(t, 33, result.StylePercentages[models.StyleVisual])
	assert.Equal(t, models.StyleKinesthetic, result.DominantStyle)
}

func TestLearningStyleServiceSubmitStoresResult(t *testing.T) {
	repo := newProfileRepoStub()
	spy := &invalidatorSpy{}
	svc := NewLearningStyleService(repo, loadLibrary(t), spy, nil, zap.NewNop())

	outcome, err := svc.Submit(context.Background(), "user-1", AssessmentRequest{Answers: []models.LearningStyle{
		models.StyleReadingWriting, models.StyleReadingWriting, models.StyleVisual,
		models.StyleReadingWriting, models.StyleAuditory,
	}})
	require.NoError(t, err)
	assert.Equal(t, models.StyleReadingWriting, outcome.DominantStyle)
	assert.NotEmpty(t, outcome.Label)
	assert.NotEmpty(t, outcome.Tips)

	stored := repo.profiles["user-1"]
	require.NotNil(t, stored.LearningStyle)
	assert.Equal(t, "reading_writing", *stored.LearningStyle)

	var blob map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.LearningPreferences, &blob))
	assert.Equal(t, "reading_writing", blob["dominant_style"])
	assert.EqualValues(t, 5, blob["total_questions"])
	assert.Contains(t, blob, "style_percentages")
	assert.Contains(t, blob, "raw_counts")
	assert.Contains(t, blob, "assessment_date")
	assert.Equal(t, []string{"user-1"}, spy.users)
}

func TestLearningStyleServiceRejectsWrongAnswerCount(t *testing.T) {
	svc := NewLearningStyleService(newProfileRepoStub(), loadLibrary(t), nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "user-1", AssessmentRequest{Answers: []models.LearningStyle{models.StyleVisual}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLearningStyleServiceRejectsUnknownStyle(t *testing.T) {
	svc := NewLearningStyleService(newProfileRepoStub(), loadLibrary(t), nil, nil, zap.NewNop())

	answers := []models.LearningStyle{"visual", "visual", "visual", "visual", "musical"}
	_, err := svc.Submit(context.Background(), "user-1", AssessmentRequest{Answers: answers})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLearningStyleServiceQuestions(t *testing.T) {
	svc := NewLearningStyleService(newProfileRepoStub(), loadLibrary(t), nil, nil, zap.NewNop())
	questions := svc.Questions()
	require.Len(t, questions, 5)
	assert.Equal(t, 1, questions[0].ID)
}
