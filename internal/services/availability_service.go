package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var (
	ErrInvalidRange = errors.New("slot end must be after start")
	ErrOverlap      = errors.New("slot overlaps an existing slot")
)

type tutorProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error)
}

// AvailabilityService manages a tutor's bookable time inventory.
type AvailabilityService struct {
	db               *pgxpool.Pool
	availabilityRepo *repository.AvailabilityRepository
	tutorProfileRepo tutorProfileReader
}

func NewAvailabilityService(
	db *pgxpool.Pool,
	availabilityRepo *repository.AvailabilityRepository,
	tutorProfileRepo tutorProfileReader,
) *AvailabilityService {
	return &AvailabilityService{
		db:               db,
		availabilityRepo: availabilityRepo,
		tutorProfileRepo: tutorProfileRepo,
	}
}

type CreateSlotInput struct {
	SlotDate   time.Time
	StartTime  time.Time
	EndTime    time.Time
	Recurrence *string
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

func (s *AvailabilityService) CreateSlot(ctx context.Context, tutorUserID int64, input CreateSlotInput) (*models.AvailabilitySlot, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidRange
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAvailabilityRepo := repository.NewAvailabilityRepository(tx)

	// Serialize slot writes per tutor so two concurrent creates cannot both
	// pass the overlap check.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", tutor.ID); err != nil {
		return nil, err
	}

	overlaps, err := txAvailabilityRepo.HasOverlap(ctx, tutor.ID, input.SlotDate, input.StartTime, input.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrOverlap
	}

	slot, err := txAvailabilityRepo.Create(ctx, repository.CreateSlotInput{
		TutorProfileID: tutor.ID,
		SlotDate:       input.SlotDate,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Recurrence:     input.Recurrence,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *AvailabilityService) ListSlots(ctx context.Context, tutorUserID int64, filter repository.SlotListFilter) ([]models.AvailabilitySlot, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.ListByTutor(ctx, tutor.ID, filter)
}

func (s *AvailabilityService) GetSlot(ctx context.Context, tutorUserID, slotID int64) (*models.AvailabilitySlot, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.GetForTutor(ctx, tutor.ID, slotID)
}

type UpdateSlotInput struct {
	SlotDate   repository.Optional[time.Time]
	StartTime  repository.Optional[time.Time]
	EndTime    repository.Optional[time.Time]
	Recurrence repository.Optional[string]
	ValidFrom  repository.Optional[time.Time]
	ValidUntil repository.Optional[time.Time]
}

func (s *AvailabilityService) UpdateSlot(ctx context.Context, tutorUserID, slotID int64, input UpdateSlotInput) (*models.AvailabilitySlot, error) {
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

	txAvailabilityRepo := repository.NewAvailabilityRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", tutor.ID); err != nil {
		return nil, err
	}

	current, err := txAvailabilityRepo.GetForTutor(ctx, tutor.ID, slotID)
	if err != nil {
		return nil, err
	}
	if current.IsBooked {
		// Booked slots are immutable and reported the same as a miss,
		// matching the delete path.
		return nil, pgx.ErrNoRows
	}

	date := input.SlotDate.Or(current.SlotDate)
	start := input.StartTime.Or(current.StartTime)
	end := input.EndTime.Or(current.EndTime)
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	if input.SlotDate.IsSet() || input.StartTime.IsSet() || input.EndTime.IsSet() {
		overlaps, err := txAvailabilityRepo.HasOverlap(ctx, tutor.ID, date, start, end, slotID)
		if err != nil {
			return nil, err
		}
		if overlaps {
			return nil, ErrOverlap
		}
	}

	slot, err := txAvailabilityRepo.UpdateIfUnbooked(ctx, tutor.ID, slotID, repository.UpdateSlotInput{
		SlotDate:   input.SlotDate,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Recurrence: input.Recurrence,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *AvailabilityService) DeleteSlot(ctx context.Context, tutorUserID, slotID int64) error {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return err
	}
	deleted, err := s.availabilityRepo.DeleteIfUnbooked(ctx, tutor.ID, slotID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
