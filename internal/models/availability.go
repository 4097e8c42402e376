package models

import "time"

// AvailabilitySlot is a tutor-defined bookable interval. StartTime/EndTime
// are absolute timestamps on SlotDate; slots of one tutor on one date never
// overlap. A booked slot is immutable until its booking releases it.
type AvailabilitySlot struct {
	ID             int64      `json:"id"`
	TutorProfileID int64      `json:"tutor_profile_id"`
	SlotDate       time.Time  `json:"slot_date"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	IsBooked       bool       `json:"is_booked"`
	Recurrence     *string    `json:"recurrence"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DurationMinutes is the slot length in whole minutes.
func (s AvailabilitySlot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Round(time.Minute) / time.Minute)
}
