package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/studymate-api/internal/models"
)

// ProfileRepository persists student profiles keyed by user id.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUser returns the profile of a user.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	const query = `SELECT user_id, first_name, last_name, school, learning_style, learning_preferences, created_at, updated_at
		FROM profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertDetails stores name and school, leaving learning data untouched.
func (r *ProfileRepository) UpsertDetails(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if len(profile.LearningPreferences) == 0 {
		profile.LearningPreferences = types.JSONText("{}")
	}

	const query = `INSERT INTO profiles (user_id, first_name, last_name, school, learning_style, learning_preferences, created_at, updated_at)
		VALUES (:user_id, :first_name, :last_name, :school, :learning_style, :learning_preferences, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    school = EXCLUDED.school,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// UpdateLearningStyle records an assessment result, creating the profile
// when it does not exist yet.
func (r *ProfileRepository) UpdateLearningStyle(ctx context.Context, userID string, style models.LearningStyle, preferences types.JSONText) error {
	now := time.Now().UTC()
	const query = `INSERT INTO profiles (user_id, first_name, last_name, school, learning_style, learning_preferences, created_at, updated_at)
		VALUES ($1, '', '', '', $2, $3, $4, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET learning_style = EXCLUDED.learning_style,
		    learning_preferences = EXCLUDED.learning_preferences,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, string(style), preferences, now); err != nil {
		return fmt.Errorf("update learning style: %w", err)
	}
	return nil
}
