package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studymate-api/internal/models"
)

const examColumns = `id, user_id, subject, exam_date, exam_type, priority, study_progress, created_at, updated_at`

// ExamRepository persists exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (` + examColumns + `)
		VALUES (:id, :user_id, :subject, :exam_date, :exam_type, :priority, :study_progress, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// ListByUser returns a user's exams, earliest first.
func (r *ExamRepository) ListByUser(ctx context.Context, userID string) ([]models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams WHERE user_id = $1 ORDER BY exam_date ASC, created_at ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, userID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// FindByID returns an exam owned by userID.
func (r *ExamRepository) FindByID(ctx context.Context, userID, id string) (*models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams WHERE id = $1 AND user_id = $2`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id, userID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// UpdateProgress sets study_progress. Returns sql.ErrNoRows when the exam
// does not exist for the user.
func (r *ExamRepository) UpdateProgress(ctx context.Context, userID, id string, progress int) error {
	const query = `UPDATE exams SET study_progress = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	res, err := r.db.ExecContext(ctx, query, progress, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update exam progress: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an exam owned by userID.
func (r *ExamRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
