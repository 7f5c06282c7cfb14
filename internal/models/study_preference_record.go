package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPreferenceRecord is the stored form of a user's study preferences.
type StudyPreferenceRecord struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Preferences types.JSONText `db:"preferences" json:"preferences"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
