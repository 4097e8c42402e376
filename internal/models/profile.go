package models

import "time"

type StudentProfile struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	GradeLevel *string   `json:"grade_level"`
	Bio        *string   `json:"bio"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TutorProfile carries three derived fields: Rating and TotalReviews are
// recomputed from reviews on every review mutation, CompletedSessions is
// incremented when a booking reaches COMPLETED.
type TutorProfile struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Bio               *string   `json:"bio"`
	HourlyRate        float64   `json:"hourly_rate"`
	ExperienceYears   int       `json:"experience_years"`
	Rating            float64   `json:"rating"`
	TotalReviews      int       `json:"total_reviews"`
	CompletedSessions int       `json:"completed_sessions"`
	IsVerified        bool      `json:"is_verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TutorListing is the public read model returned by tutor discovery.
type TutorListing struct {
	TutorProfile
	Name       string          `json:"name"`
	Categories []TutorCategory `json:"categories,omitempty"`
}
