package models

import "time"

type BookingStatus string

const (
	BookingPending     BookingStatus = "PENDING"
	BookingConfirmed   BookingStatus = "CONFIRMED"
	BookingCompleted   BookingStatus = "COMPLETED"
	BookingCancelled   BookingStatus = "CANCELLED"
	BookingRescheduled BookingStatus = "RESCHEDULED"
)

// Terminal reports whether no further transitions leave this status.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Booking is a student's reservation against a slot. Bookings are never
// physically deleted; CANCELLED/COMPLETED model their end of life.
type Booking struct {
	ID                 int64         `json:"id"`
	StudentProfileID   int64         `json:"student_profile_id"`
	TutorProfileID     int64         `json:"tutor_profile_id"`
	CategoryID         int64         `json:"category_id"`
	AvailabilitySlotID *int64        `json:"availability_slot_id"`
	BookingDate        time.Time     `json:"booking_date"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            time.Time     `json:"end_time"`
	DurationMinutes    int           `json:"duration_minutes"`
	Amount             float64       `json:"amount"`
	Status             BookingStatus `json:"status"`
	IsPaid             bool          `json:"is_paid"`
	MeetingLink        *string       `json:"meeting_link"`
	Notes              *string       `json:"notes"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type BookingStats struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Confirmed      int     `json:"confirmed"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	Rescheduled    int     `json:"rescheduled"`
	CompletionRate int     `json:"completion_rate"`
	TotalEarnings  float64 `json:"total_earnings"`
}
