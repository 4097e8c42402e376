package models

import "time"

// Review is 1:1 with a completed booking (unique on BookingID). Reviews are
// auto-verified because they are tied to a real completed booking.
type Review struct {
	ID               int64     `json:"id"`
	BookingID        int64     `json:"booking_id"`
	StudentProfileID int64     `json:"student_profile_id"`
	TutorProfileID   int64     `json:"tutor_profile_id"`
	Rating           int       `json:"rating"`
	Comment          *string   `json:"comment"`
	IsVerified       bool      `json:"is_verified"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
