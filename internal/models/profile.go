package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Profile holds personal details and the latest learning-style result.
type Profile struct {
	UserID              string         `db:"user_id" json:"user_id"`
	FirstName           string         `db:"first_name" json:"first_name"`
	LastName            string         `db:"last_name" json:"last_name"`
	School              string         `db:"school" json:"school"`
	LearningStyle       *string        `db:"learning_style" json:"learning_style,omitempty"`
	LearningPreferences types.JSONText `db:"learning_preferences" json:"learning_preferences"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the first name, falling back to the full name.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.LastName
}
