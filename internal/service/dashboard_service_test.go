package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type examListStub struct {
	exams []models.Exam
	calls int
	err   error
}

func (s *examListStub) ListByUser(ctx context.Context, userID string) ([]models.Exam, error) {
	s.calls++
	return s.exams, s.err
}

func examOn(subject string, date time.Time, progress int) models.Exam {
	return models.Exam{Subject: subject, Date: date, Type: "Final", Priority: models.ExamPriorityMedium, StudyProgress: progress}
}

func TestSummarizeExams(t *testing.T) {
	now := time.Date(2024, time.May, 10, 15, 0, 0, 0, time.UTC)
	exams := []models.Exam{
		examOn("History", now.AddDate(0, 0, -3), 100),
		examOn("Maths", time.Date(2024, time.May, 16, 9, 0, 0, 0, time.UTC), 45),
		examOn("English", now.AddDate(0, 1, 0), 0),
	}

	summary := SummarizeExams(exams, now)
	assert.Equal(t, 3, summary.ExamCount)
	assert.Equal(t, 48, summary.AverageProgress)
	require.NotNil(t, summary.DaysUntilNextExam)
	assert.Equal(t, 6, *summary.DaysUntilNextExam)
	require.Len(t, summary.UpcomingExams, 2)
	assert.Equal(t, "Maths", summary.UpcomingExams[0].Subject)
}

func TestSummarizeExamsEmpty(t *testing.T) {
	summary := SummarizeExams(nil, time.Now())
	assert.Zero(t, summary.ExamCount)
	assert.Zero(t, summary.AverageProgress)
	assert.Nil(t, summary.DaysUntilNextExam)
	assert.NotNil(t, summary.UpcomingExams)
}

func TestSummarizeExamsToday(t *testing.T) {
	now := time.Date(2024, time.May, 10, 23, 0, 0, 0, time.UTC)
	summary := SummarizeExams([]models.Exam{examOn("Maths", time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC), 10)}, now)
	require.NotNil(t, summary.DaysUntilNextExam)
	assert.Equal(t, 0, *summary.DaysUntilNextExam)
}

func TestDashboardServiceAttachesTips(t *testing.T) {
	profiles := newProfileRepoStub()
	style := string(models.StyleAuditory)
	profiles.profiles["user-1"] = &models.Profile{UserID: "user-1", LearningStyle: &style}
	svc := NewDashboardService(&examListStub{}, profiles, loadLibrary(t), nil, 0, zap.NewNop())

	summary, _, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, summary.LearningStyle)
	assert.Equal(t, models.StyleAuditory, *summary.LearningStyle)
	require.NotNil(t, summary.Tips)
	assert.NotEmpty(t, summary.Tips.Suggestions)
}

func TestDashboardServiceWithoutProfile(t *testing.T) {
	svc := NewDashboardService(&examListStub{}, newProfileRepoStub(), loadLibrary(t), nil, 0, zap.NewNop())

	summary, _, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, summary.Tips)
}

func TestDashboardServiceCachesUntilInvalidated(t *testing.T) {
	exams := &examListStub{exams: []models.Exam{examOn("Maths", time.Now().AddDate(0, 0, 7), 50)}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(exams, newProfileRepoStub(), loadLibrary(t), cache, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, hit, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, exams.calls)
	assert.Equal(t, first.AverageProgress, second.AverageProgress)

	svc.InvalidateUser(ctx, "user-1")
	_, hit, err = svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, exams.calls)
}

func TestDashboardServiceExamFailure(t *testing.T) {
	svc := NewDashboardService(&examListStub{err: errors.New("db down")}, newProfileRepoStub(), nil, nil, 0, zap.NewNop())

	_, _, err := svc.Summary(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
