package models

import "time"

// AIResultKind names the operation that produced an AI result.
type AIResultKind string

const (
	AIResultAssistant    AIResultKind = "assistant"
	AIResultDocumentQA   AIResultKind = "document_qa"
	AIResultPracticeTest AIResultKind = "practice_test"
)

// AIResult records a prompt and the text the model returned.
type AIResult struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	Kind      AIResultKind `db:"kind" json:"kind"`
	Prompt    string       `db:"prompt" json:"prompt"`
	Response  string       `db:"response" json:"response"`
	Model     string       `db:"model" json:"model"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
