package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type examServiceStub struct {
	created   service.CreateExamRequest
	progress  service.UpdateExamProgressRequest
	deletedID string
	err       error
}

func (s *examServiceStub) List(ctx context.Context, userID string) ([]models.Exam, error) {
	return []models.Exam{{ID: "exam-1", UserID: userID, Subject: "Maths"}}, s.err
}

func (s *examServiceStub) Create(ctx context.Context, userID string, req service.CreateExamRequest) (*models.Exam, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Exam{ID: "exam-1", UserID: userID, Subject: req.Subject, Priority: models.ExamPriorityMedium}, nil
}

func (s *examServiceStub) UpdateProgress(ctx context.Context, userID, examID string, req service.UpdateExamProgressRequest) (*models.Exam, error) {
	s.progress = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Exam{ID: examID, StudyProgress: *req.StudyProgress}, nil
}

func (s *examServiceStub) Delete(ctx context.Context, userID, examID string) error {
	s.deletedID = examID
	return s.err
}

func TestExamHandlerCreate(t *testing.T) {
	svc := &examServiceStub{}
	h := NewExamHandler(svc)
	c, w := newTestContext(http.MethodPost, "/exams", strings.NewReader(`{"subject":"Maths","date":"2024-06-01","type":"Final"}`))

	h.Create(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, "Maths", svc.created.Subject)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"priority":"medium"`)
}

func TestExamHandlerList(t *testing.T) {
	h := NewExamHandler(&examServiceStub{})
	c, w := newTestContext(http.MethodGet, "/exams", nil)

	h.List(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), "exam-1")
}

func TestExamHandlerUpdateProgress(t *testing.T) {
	svc := &examServiceStub{}
	h := NewExamHandler(svc)
	c, w := newTestContext(http.MethodPatch, "/exams/exam-1/progress", strings.NewReader(`{"study_progress":0}`))
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	h.UpdateProgress(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, *svc.progress.StudyProgress)
}

func TestExamHandlerDelete(t *testing.T) {
	svc := &examServiceStub{}
	h := NewExamHandler(svc)
	c, _ := newTestContext(http.MethodDelete, "/exams/exam-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	h.Delete(withUser(c, "user-1"))

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "exam-1", svc.deletedID)
}

func TestExamHandlerDeleteNotFound(t *testing.T) {
	h := NewExamHandler(&examServiceStub{err: appErrors.Clone(appErrors.ErrNotFound, "exam not found")})
	c, w := newTestContext(http.MethodDelete, "/exams/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Delete(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusNotFound)
}
