package models

import "time"

// ExamPriority ranks how urgent an exam is.
type ExamPriority string

const (
	ExamPriorityHigh   ExamPriority = "high"
	ExamPriorityMedium ExamPriority = "medium"
	ExamPriorityLow    ExamPriority = "low"
)

// Exam is an upcoming assessment tracked by a student.
type Exam struct {
	ID            string       `db:"id" json:"id"`
	UserID        string       `db:"user_id" json:"user_id"`
	Subject       string       `db:"subject" json:"subject"`
	Date          time.Time    `db:"exam_date" json:"date"`
	Type          string       `db:"exam_type" json:"type"`
	Priority      ExamPriority `db:"priority" json:"priority"`
	StudyProgress int          `db:"study_progress" json:"study_progress"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}
