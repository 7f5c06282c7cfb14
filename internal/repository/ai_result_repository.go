package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studymate-api/internal/models"
)

// AIResultRepository stores model outputs for later review.
type AIResultRepository struct {
	db *sqlx.DB
}

// NewAIResultRepository constructs the repository.
func NewAIResultRepository(db *sqlx.DB) *AIResultRepository {
	return &AIResultRepository{db: db}
}

// Create inserts a result row.
func (r *AIResultRepository) Create(ctx context.Context, result *models.AIResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ai_results (id, user_id, kind, prompt, response, model, created_at)
		VALUES (:id, :user_id, :kind, :prompt, :response, :model, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create ai result: %w", err)
	}
	return nil
}

// ListByUser returns the most recent results of a user.
func (r *AIResultRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.AIResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, user_id, kind, prompt, response, model, created_at
		FROM ai_results WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	var results []models.AIResult
	if err := r.db.SelectContext(ctx, &results, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list ai results: %w", err)
	}
	return results, nil
}
