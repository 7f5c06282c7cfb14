package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/jobs"
)

const aiResultJobType = "ai_result"

type aiResultRepository interface {
	Create(ctx context.Context, result *models.AIResult) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AIResult, error)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// AIResultRecorder persists model outputs off the request path.
type AIResultRecorder struct {
	repo    aiResultRepository
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAIResultRecorder constructs a recorder. Until a queue is attached
// Record only counts dropped results.
func NewAIResultRecorder(repo aiResultRepository, metrics *MetricsService, logger *zap.Logger) *AIResultRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIResultRecorder{repo: repo, metrics: metrics, logger: logger}
}

// Attach sets the queue that feeds Handle.
func (r *AIResultRecorder) Attach(queue jobEnqueuer) {
	r.queue = queue
}

// Record enqueues result for persistence without blocking.
func (r *AIResultRecorder) Record(result models.AIResult) {
	if r == nil {
		return
	}
	if r.queue == nil {
		r.metrics.RecordAIResult("disabled")
		return
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	if err := r.queue.TryEnqueue(jobs.Job{Type: aiResultJobType, Payload: result}); err != nil {
		r.metrics.RecordAIResult("dropped")
		r.logger.Warn("ai result dropped", zap.String("user_id", result.UserID), zap.String("kind", string(result.Kind)), zap.Error(err))
		return
	}
	r.metrics.RecordAIResult("queued")
}

// Handle is the queue handler that writes one result.
func (r *AIResultRecorder) Handle(ctx context.Context, job jobs.Job) error {
	result, ok := job.Payload.(models.AIResult)
	if !ok {
		r.logger.Error("unexpected ai result payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	if err := r.repo.Create(ctx, &result); err != nil {
		r.metrics.RecordAIResult("failed")
		return err
	}
	r.metrics.RecordAIResult("stored")
	return nil
}

// Recent lists the latest stored results of a user.
func (r *AIResultRecorder) Recent(ctx context.Context, userID string, limit int) ([]models.AIResult, error) {
	results, err := r.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ai results")
	}
	if results == nil {
		results = []models.AIResult{}
	}
	return results, nil
}
