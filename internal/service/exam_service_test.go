package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type examRepoStub struct {
	items map[string]*models.Exam
}

func newExamRepoStub() *examRepoStub {
	return &examRepoStub{items: map[string]*models.Exam{}}
}

func (s *examRepoStub) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = uuid.NewString()
	cp := *exam
	s.items[exam.ID] = &cp
	return nil
}

func (s *examRepoStub) ListByUser(ctx context.Context, userID string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range s.items {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *examRepoStub) FindByID(ctx context.Context, userID, id string) (*models.Exam, error) {
	e, ok := s.items[id]
	if !ok || e.UserID != userID {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *examRepoStub) UpdateProgress(ctx context.Context, userID, id string, progress int) error {
	e, ok := s.items[id]
	if !ok || e.UserID != userID {
		return sql.ErrNoRows
	}
	e.StudyProgress = progress
	return nil
}

func (s *examRepoStub) Delete(ctx context.Context, userID, id string) error {
	e, ok := s.items[id]
	if !ok || e.UserID != userID {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type invalidatorSpy struct {
	users []string
}

func (s *invalidatorSpy) InvalidateUser(ctx context.Context, userID string) {
	s.users = append(s.users, userID)
}

func TestExamServiceCreateDefaultsPriority(t *testing.T) {
	spy := &invalidatorSpy{}
	svc := NewExamService(newExamRepoStub(), spy, validator.New(), zap.NewNop())

	exam, err := svc.Create(context.Background(), "user-1", CreateExamRequest{Subject: "Maths Paper 1", Date: "2024-06-03", Type: "final"})
	require.NoError(t, err)
	assert.Equal(t, models.ExamPriorityMedium, exam.Priority)
	assert.Equal(t, 0, exam.StudyProgress)
	assert.Equal(t, "2024-06-03", exam.Date.Format(models.DateLayout))
	assert.Equal(t, []string{"user-1"}, spy.users)
}

func TestExamServiceCreateValidation(t *testing.T) {
	svc := NewExamService(newExamRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), "user-1", CreateExamRequest{Subject: "Maths", Date: "June 3", Type: "final"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), "user-1", CreateExamRequest{Subject: "Maths", Date: "2024-06-03", Type: "final", Priority: "urgent"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExamServiceListOrderedByDate(t *testing.T) {
	svc := NewExamService(newExamRepoStub(), nil, nil, nil)
	ctx := context.Background()
	_, _ = svc.Create(ctx, "user-1", CreateExamRequest{Subject: "B", Date: "2024-07-01", Type: "final"})
	_, _ = svc.Create(ctx, "user-1", CreateExamRequest{Subject: "A", Date: "2024-06-01", Type: "mock"})
	_, _ = svc.Create(ctx, "user-2", CreateExamRequest{Subject: "C", Date: "2024-05-01", Type: "mock"})

	exams, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, "A", exams[0].Subject)

	empty, err := svc.List(ctx, "user-3")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestExamServiceProgressAndDelete(t *testing.T) {
	spy := &invalidatorSpy{}
	svc := NewExamService(newExamRepoStub(), spy, nil, nil)
	ctx := context.Background()

	exam, err := svc.Create(ctx, "user-1", CreateExamRequest{Subject: "History", Date: "2024-06-01", Type: "mock", Priority: "high"})
	require.NoError(t, err)

	progress := 60
	updated, err := svc.UpdateProgress(ctx, "user-1", exam.ID, UpdateExamProgressRequest{StudyProgress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.StudyProgress)

	tooMuch := 101
	_, err = svc.UpdateProgress(ctx, "user-1", exam.ID, UpdateExamProgressRequest{StudyProgress: &tooMuch})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.UpdateProgress(ctx, "user-2", exam.ID, UpdateExamProgressRequest{StudyProgress: &progress})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	assert.True(t, appErrors.Is(svc.Delete(ctx, "user-2", exam.ID), appErrors.ErrNotFound))
	require.NoError(t, svc.Delete(ctx, "user-1", exam.ID))
	assert.Len(t, spy.users, 3)
}
