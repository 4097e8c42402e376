package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TutorCategory links a tutor to a subject with a free-text proficiency
// label. Unique on (tutor_profile_id, category_id).
type TutorCategory struct {
	ID               int64     `json:"id"`
	TutorProfileID   int64     `json:"tutor_profile_id"`
	CategoryID       int64     `json:"category_id"`
	ProficiencyLevel *string   `json:"proficiency_level"`
	CategoryName     string    `json:"category_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
