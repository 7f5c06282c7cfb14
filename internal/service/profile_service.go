package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type profileRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	UpsertDetails(ctx context.Context, profile *models.Profile) error
	UpdateLearningStyle(ctx context.Context, userID string, style models.LearningStyle, preferences types.JSONText) error
}

// UpdateProfileRequest carries editable profile fields.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	School    string `json:"school" validate:"max=200"`
}

// ProfileService reads and edits student profiles.
type ProfileService struct {
	repo      profileRepository
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(repo profileRepository, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, dashboard: dashboard, validator: validate, logger: logger}
}

// Get returns the profile, or an empty one for a new user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Profile{UserID: userID, LearningPreferences: types.JSONText("{}")}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Update stores name and school.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.FirstName = strings.TrimSpace(req.FirstName)
	profile.LastName = strings.TrimSpace(req.LastName)
	profile.School = strings.TrimSpace(req.School)

	if err := s.repo.UpsertDetails(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if s.dashboard != nil {
		s.dashboard.InvalidateUser(ctx, userID)
	}
	return profile, nil
}
