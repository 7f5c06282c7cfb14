package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studymate-api/internal/models"
)

// StudyPreferenceRepository persists study preferences per user.
type StudyPreferenceRepository struct {
	db *sqlx.DB
}

// NewStudyPreferenceRepository constructs the repository.
func NewStudyPreferenceRepository(db *sqlx.DB) *StudyPreferenceRepository {
	return &StudyPreferenceRepository{db: db}
}

// GetByUser returns the stored preferences of a user.
func (r *StudyPreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.StudyPreferenceRecord, error) {
	const query = `SELECT id, user_id, preferences, created_at, updated_at FROM study_preferences WHERE user_id = $1`
	var record models.StudyPreferenceRecord
	if err := r.db.GetContext(ctx, &record, query, userID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert creates or replaces the preferences of a user.
func (r *StudyPreferenceRepository) Upsert(ctx context.Context, record *models.StudyPreferenceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if len(record.Preferences) == 0 {
		record.Preferences = []byte("{}")
	}

	const query = `INSERT INTO study_preferences (id, user_id, preferences, created_at, updated_at)
		VALUES (:id, :user_id, :preferences, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = EXCLUDED.preferences,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert study preferences: %w", err)
	}
	return nil
}
