package services

import (
	"fmt"

	"github.com/arman-d/TutorAppBack/internal/models"
)

// InvalidTransitionError names the rejected from->to pair.
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition %s -> %s", e.From, e.To)
}

// bookingTransitions is the full lifecycle graph. COMPLETED and CANCELLED
// are terminal; there are no self-loops.
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:     {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:   {models.BookingCompleted, models.BookingCancelled, models.BookingRescheduled},
	models.BookingRescheduled: {models.BookingConfirmed, models.BookingCancelled},
	models.BookingCompleted:   {},
	models.BookingCancelled:   {},
}

func canTransition(from, to models.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// validateTransition returns the typed error for a disallowed edge.
func validateTransition(from, to models.BookingStatus) error {
	if !canTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

func parseBookingStatus(value string) (models.BookingStatus, error) {
	switch models.BookingStatus(value) {
	case models.BookingPending, models.BookingConfirmed, models.BookingCompleted,
		models.BookingCancelled, models.BookingRescheduled:
		return models.BookingStatus(value), nil
	default:
		return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, value)
	}
}
