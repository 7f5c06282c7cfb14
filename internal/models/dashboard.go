package models

// StudyTips is the tip card shown for a learning style.
type StudyTips struct {
	Title       string   `json:"title" yaml:"title"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// DashboardSummary aggregates a student's exam progress.
type DashboardSummary struct {
	ExamCount         int            `json:"exam_count"`
	AverageProgress   int            `json:"average_progress"`
	DaysUntilNextExam *int           `json:"days_until_next_exam,omitempty"`
	UpcomingExams     []Exam         `json:"upcoming_exams"`
	LearningStyle     *LearningStyle `json:"learning_style,omitempty"`
	Tips              *StudyTips     `json:"tips,omitempty"`
}
