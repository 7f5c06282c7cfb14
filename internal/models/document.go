package models

import "time"

// Document is an uploaded study file replaced by its extracted text.
type Document struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Filename   string    `json:"filename"`
	Content    string    `json:"-"`
	WordCount  int       `json:"word_count"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `json:"upload_date"`
}

// TestQuestion is one generated practice question.
type TestQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Topic         string   `json:"topic,omitempty"`
}

// PracticeTest is a generated test. When the model reply cannot be parsed,
// Error and RawResponse are set and Questions is empty.
type PracticeTest struct {
	ID          string         `json:"test_id"`
	UserID      string         `json:"-"`
	DocumentID  string         `json:"document_id"`
	Title       string         `json:"title"`
	Questions   []TestQuestion `json:"questions,omitempty"`
	Error       string         `json:"error,omitempty"`
	RawResponse string         `json:"raw_response,omitempty"`
	TestType    string         `json:"test_type"`
	Difficulty  string         `json:"difficulty"`
	CreatedAt   time.Time      `json:"created_at"`
}
