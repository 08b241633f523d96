package models

import "time"

// Goal is the canonical shape of a personal goal.
type Goal struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	TargetDate  string     `json:"target_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
