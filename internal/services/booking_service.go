package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var (
	ErrAlreadyBooked    = errors.New("slot is already booked")
	ErrSlotMismatch     = errors.New("slot does not belong to the requested tutor")
	ErrPastSlot         = errors.New("slot is in the past")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrAlreadyCompleted = errors.New("booking is already completed")
)

type studentProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error)
	GetByID(ctx context.Context, id int64) (*models.StudentProfile, error)
}

// BookingService owns the booking lifecycle: transactional creation against a
// slot, the status state machine and its side effects, and read aggregations.
type BookingService struct {
	db                 *pgxpool.Pool
	bookingRepo        *repository.BookingRepository
	tutorProfileRepo   *repository.TutorProfileRepository
	studentProfileRepo studentProfileReader
	now                func() time.Time
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	tutorProfileRepo *repository.TutorProfileRepository,
	studentProfileRepo studentProfileReader,
) *BookingService {
	return &BookingService{
		db:                 db,
		bookingRepo:        bookingRepo,
		tutorProfileRepo:   tutorProfileRepo,
		studentProfileRepo: studentProfileRepo,
		now:                time.Now,
	}
}

type CreateBookingInput struct {
	TutorProfileID     int64
	AvailabilitySlotID int64
	CategoryID         int64
	Notes              *string
}

// CreateBooking runs as one transaction: the booking insert, the slot flip
// and the tutor notification commit or roll back together. The slot flip is
// a compare-and-swap on is_booked, so two concurrent requests cannot both
// claim the slot.
func (s *BookingService) CreateBooking(ctx context.Context, studentUserID int64, input CreateBookingInput) (*models.Booking, error) {
	if input.TutorProfileID <= 0 || input.AvailabilitySlotID <= 0 || input.CategoryID <= 0 {
		return nil, ErrInvalidInput
	}

	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAvailabilityRepo := repository.NewAvailabilityRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)
	txTutorProfileRepo := repository.NewTutorProfileRepository(tx)
	txCategoryRepo := repository.NewCategoryRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TutorProfileID); err != nil {
		return nil, err
	}

	tutor, err := txTutorProfileRepo.GetByID(ctx, input.TutorProfileID)
	if err != nil {
		return nil, err
	}
	slot, err := txAvailabilityRepo.GetByID(ctx, input.AvailabilitySlotID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked {
		return nil, ErrAlreadyBooked
	}
	if slot.TutorProfileID != tutor.ID {
		return nil, ErrSlotMismatch
	}
	if slot.StartTime.Before(s.now()) {
		return nil, ErrPastSlot
	}
	if _, err := txCategoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	duration := slot.DurationMinutes()
	amount := tutor.HourlyRate * float64(duration) / 60

	claimed, err := txAvailabilityRepo.MarkBookedIfFree(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyBooked
	}

	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		StudentProfileID:   student.ID,
		TutorProfileID:     tutor.ID,
		CategoryID:         input.CategoryID,
		AvailabilitySlotID: slot.ID,
		BookingDate:        slot.SlotDate,
		StartTime:          slot.StartTime,
		EndTime:            slot.EndTime,
		DurationMinutes:    duration,
		Amount:             amount,
		Notes:              input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := txNotificationRepo.Create(ctx, repository.CreateNotificationInput{
		UserID:    tutor.UserID,
		Title:     "New booking request",
		Message:   fmt.Sprintf("A student requested a session on %s", slot.SlotDate.Format("2006-01-02")),
		Type:      models.NotificationBooking,
		RelatedID: &booking.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

type UpdateBookingStatusInput struct {
	Status      string
	Notes       *string
	MeetingLink *string
}

// UpdateStatus applies a tutor-driven transition. Side effects run only on a
// successful transition: CANCELLED releases the slot, COMPLETED bumps the
// tutor's completed-session counter, CONFIRMED persists the meeting link, and
// the student is notified of any change.
func (s *BookingService) UpdateStatus(ctx context.Context, tutorUserID, bookingID int64, input UpdateBookingStatusInput) (*models.Booking, error) {
	next, err := parseBookingStatus(input.Status)
	if err != nil {
		return nil, err
	}

	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txTutorProfileRepo := repository.NewTutorProfileRepository(tx)
	txStudentProfileRepo := repository.NewStudentProfileRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TutorProfileID != tutor.ID {
		// Foreign bookings look missing; existence is not leaked.
		return nil, pgx.ErrNoRows
	}
	if err := validateTransition(booking.Status, next); err != nil {
		return nil, err
	}

	if next == models.BookingCancelled {
		updated, err := cancelBooking(ctx, tx, booking, "tutor", input.Notes)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return updated, nil
	}

	updated, err := txBookingRepo.UpdateStatusIfCurrent(ctx, booking.ID, booking.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &InvalidTransitionError{From: booking.Status, To: next}
		}
		return nil, err
	}

	if next == models.BookingConfirmed {
		link := fmt.Sprintf("https://meet.tutorapp.io/%s", uuid.NewString())
		if input.MeetingLink != nil && *input.MeetingLink != "" {
			link = *input.MeetingLink
		}
		if err := txBookingRepo.SetMeetingLink(ctx, booking.ID, link); err != nil {
			return nil, err
		}
		updated.MeetingLink = &link
	}
	if next == models.BookingCompleted {
		if err := txTutorProfileRepo.IncrementCompletedSessions(ctx, tutor.ID); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil && *input.Notes != "" {
		if err := txBookingRepo.AppendNote(ctx, booking.ID, *input.Notes); err != nil {
			return nil, err
		}
	}

	student, err := txStudentProfileRepo.GetByID(ctx, booking.StudentProfileID)
	if err != nil {
		return nil, err
	}
	if err := txNotificationRepo.Create(ctx, repository.CreateNotificationInput{
		UserID:    student.UserID,
		Title:     "Booking status updated",
		Message:   fmt.Sprintf("Your booking is now %s", next),
		Type:      models.NotificationBooking,
		RelatedID: &booking.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelBooking is the student entry point: a restricted subset of the state
// machine that can only reach CANCELLED.
func (s *BookingService) CancelBooking(ctx context.Context, studentUserID, bookingID int64) (*models.Booking, error) {
	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.StudentProfileID != student.ID {
		return nil, pgx.ErrNoRows
	}
	switch booking.Status {
	case models.BookingCancelled:
		return nil, ErrAlreadyCancelled
	case models.BookingCompleted:
		return nil, ErrAlreadyCompleted
	}

	updated, err := cancelBooking(ctx, tx, booking, "student", nil)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// cancelBooking is the single cancellation procedure used by both the student
// cancel endpoint and the tutor CANCELLED transition, so slot release, audit
// note and notification always happen in the same order.
func cancelBooking(ctx context.Context, tx pgx.Tx, booking *models.Booking, cancelledBy string, notes *string) (*models.Booking, error) {
	txBookingRepo := repository.NewBookingRepository(tx)
	txAvailabilityRepo := repository.NewAvailabilityRepository(tx)
	txStudentProfileRepo := repository.NewStudentProfileRepository(tx)
	txTutorProfileRepo := repository.NewTutorProfileRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	updated, err := txBookingRepo.UpdateStatusIfCurrent(ctx, booking.ID, booking.Status, models.BookingCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &InvalidTransitionError{From: booking.Status, To: models.BookingCancelled}
		}
		return nil, err
	}
	if err := txBookingRepo.AppendNote(ctx, booking.ID, "Cancelled by "+cancelledBy); err != nil {
		return nil, err
	}
	if notes != nil && *notes != "" {
		if err := txBookingRepo.AppendNote(ctx, booking.ID, *notes); err != nil {
			return nil, err
		}
	}
	if booking.AvailabilitySlotID != nil {
		if err := txAvailabilityRepo.Release(ctx, *booking.AvailabilitySlotID); err != nil {
			return nil, err
		}
	}

	// Notify the counterparty of whoever cancelled.
	var recipientUserID int64
	if cancelledBy == "student" {
		tutor, err := txTutorProfileRepo.GetByID(ctx, booking.TutorProfileID)
		if err != nil {
			return nil, err
		}
		recipientUserID = tutor.UserID
	} else {
		student, err := txStudentProfileRepo.GetByID(ctx, booking.StudentProfileID)
		if err != nil {
			return nil, err
		}
		recipientUserID = student.UserID
	}
	if err := txNotificationRepo.Create(ctx, repository.CreateNotificationInput{
		UserID:    recipientUserID,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("Booking on %s was cancelled by the %s", booking.BookingDate.Format("2006-01-02"), cancelledBy),
		Type:      models.NotificationBooking,
		RelatedID: &booking.ID,
	}); err != nil {
		return nil, err
	}

	updated.Status = models.BookingCancelled
	return updated, nil
}

// ListForTutor returns the tutor's bookings, newest first.
func (s *BookingService) ListForTutor(ctx context.Context, tutorUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, 0, err
	}
	filter.TutorProfileID = tutor.ID
	filter.StudentProfileID = 0
	return s.bookingRepo.List(ctx, filter)
}

func (s *BookingService) ListForStudent(ctx context.Context, studentUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error) {
	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, 0, err
	}
	filter.StudentProfileID = student.ID
	filter.TutorProfileID = 0
	return s.bookingRepo.List(ctx, filter)
}

func (s *BookingService) GetForTutor(ctx context.Context, tutorUserID, bookingID int64) (*models.Booking, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TutorProfileID != tutor.ID {
		return nil, pgx.ErrNoRows
	}
	return booking, nil
}

// Stats aggregates the tutor's bookings and derives the completion rate as a
// rounded integer percentage (0 when there are no bookings).
func (s *BookingService) Stats(ctx context.Context, tutorUserID int64) (*models.BookingStats, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	stats, err := s.bookingRepo.StatsForTutor(ctx, tutor.ID)
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = completionRate(stats.Completed, stats.Total)
	return stats, nil
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
