package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	ListByUser(ctx context.Context, userID string) ([]models.Exam, error)
	FindByID(ctx context.Context, userID, id string) (*models.Exam, error)
	UpdateProgress(ctx context.Context, userID, id string, progress int) error
	Delete(ctx context.Context, userID, id string) error
}

// dashboardInvalidator drops cached dashboard data for a user.
type dashboardInvalidator interface {
	InvalidateUser(ctx context.Context, userID string)
}

// CreateExamRequest captures a new exam.
type CreateExamRequest struct {
	Subject  string `json:"subject" validate:"required,max=200"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Type     string `json:"type" validate:"required,max=50"`
	Priority string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// UpdateExamProgressRequest sets study progress in percent.
type UpdateExamProgressRequest struct {
	StudyProgress *int `json:"study_progress" validate:"required,min=0,max=100"`
}

// ExamService manages a student's exams.
type ExamService struct {
	repo      examRepository
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the service. dashboard may be nil.
func NewExamService(repo examRepository, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns the user's exams by date.
func (s *ExamService) List(ctx context.Context, userID string) ([]models.Exam, error) {
	exams, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	if exams == nil {
		exams = []models.Exam{}
	}
	return exams, nil
}

// Create records an exam with zero progress.
func (s *ExamService) Create(ctx context.Context, userID string, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam date")
	}
	priority := models.ExamPriority(req.Priority)
	if priority == "" {
		priority = models.ExamPriorityMedium
	}

	exam := &models.Exam{
		UserID:        userID,
		Subject:       strings.TrimSpace(req.Subject),
		Date:          date,
		Type:          strings.TrimSpace(req.Type),
		Priority:      priority,
		StudyProgress: 0,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.invalidate(ctx, userID)
	return exam, nil
}

// UpdateProgress sets the study progress of an exam.
func (s *ExamService) UpdateProgress(ctx context.Context, userID, examID string, req UpdateExamProgressRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "study progress must be between 0 and 100")
	}
	if err := s.repo.UpdateProgress(ctx, userID, examID, *req.StudyProgress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam progress")
	}
	s.invalidate(ctx, userID)

	exam, err := s.repo.FindByID(ctx, userID, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Delete removes an exam.
func (s *ExamService) Delete(ctx context.Context, userID, examID string) error {
	if err := s.repo.Delete(ctx, userID, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *ExamService) invalidate(ctx context.Context, userID string) {
	if s.dashboard != nil {
		s.dashboard.InvalidateUser(ctx, userID)
	}
}
