package models

import "time"

// LearningStyle is one of the four assessed learning modalities.
type LearningStyle string

const (
	StyleVisual         LearningStyle = "visual"
	StyleAuditory       LearningStyle = "auditory"
	StyleKinesthetic    LearningStyle = "kinesthetic"
	StyleReadingWriting LearningStyle = "reading_writing"
)

// LearningStyles lists styles in tie-break order; later entries win ties.
var LearningStyles = []LearningStyle{StyleVisual, StyleAuditory, StyleKinesthetic, StyleReadingWriting}

// Valid reports whether s is a known style.
func (s LearningStyle) Valid() bool {
	for _, style := range LearningStyles {
		if s == style {
			return true
		}
	}
	return false
}

// AssessmentOption is one answer choice mapped to a style.
type AssessmentOption struct {
	Text  string        `json:"text" yaml:"text"`
	Style LearningStyle `json:"style" yaml:"style"`
}

// AssessmentQuestion is a single assessment item.
type AssessmentQuestion struct {
	ID       int                `json:"id" yaml:"id"`
	Question string             `json:"question" yaml:"question"`
	Options  []AssessmentOption `json:"options" yaml:"options"`
}

// AssessmentResult is stored on the profile as the learning-preferences blob.
type AssessmentResult struct {
	DominantStyle    LearningStyle         `json:"dominant_style"`
	StylePercentages map[LearningStyle]int `json:"style_percentages"`
	RawCounts        map[LearningStyle]int `json:"raw_counts"`
	AssessmentDate   time.Time             `json:"assessment_date"`
	TotalQuestions   int                   `json:"total_questions"`
}
