package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const slotColumns = `id, tutor_profile_id, slot_date, start_time, end_time, is_booked,
	recurrence, valid_from, valid_until, created_at, updated_at`

func scanSlot(row interface{ Scan(dest ...any) error }, s *models.AvailabilitySlot) error {
	return row.Scan(
		&s.ID,
		&s.TutorProfileID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.IsBooked,
		&s.Recurrence,
		&s.ValidFrom,
		&s.ValidUntil,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

type CreateSlotInput struct {
	TutorProfileID int64
	SlotDate       time.Time
	StartTime      time.Time
	EndTime        time.Time
	Recurrence     *string
	ValidFrom      *time.Time
	ValidUntil     *time.Time
}

func (r *AvailabilityRepository) Create(ctx context.Context, input CreateSlotInput) (*models.AvailabilitySlot, error) {
	query := `
		INSERT INTO availability_slots (tutor_profile_id, slot_date, start_time, end_time, recurrence, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + slotColumns
	var slot models.AvailabilitySlot
	err := scanSlot(r.db.QueryRow(ctx, query,
		input.TutorProfileID,
		input.SlotDate,
		input.StartTime,
		input.EndTime,
		input.Recurrence,
		input.ValidFrom,
		input.ValidUntil,
	), &slot)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetForTutor resolves a slot only when it belongs to the given tutor, so a
// foreign slot is indistinguishable from a missing one.
func (r *AvailabilityRepository) GetForTutor(ctx context.Context, tutorProfileID, slotID int64) (*models.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1 AND tutor_profile_id = $2`
	var slot models.AvailabilitySlot
	if err := scanSlot(r.db.QueryRow(ctx, query, slotID, tutorProfileID), &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, slotID int64) (*models.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`
	var slot models.AvailabilitySlot
	if err := scanSlot(r.db.QueryRow(ctx, query, slotID), &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

type SlotListFilter struct {
	Date     *time.Time
	DateFrom *time.Time
	DateTo   *time.Time
	IsBooked *bool
}

func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorProfileID int64, filter SlotListFilter) ([]models.AvailabilitySlot, error) {
	args := []any{tutorProfileID}
	whereParts := []string{"tutor_profile_id = $1"}

	if filter.Date != nil {
		args = append(args, *filter.Date)
		whereParts = append(whereParts, fmt.Sprintf("slot_date = $%d::date", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		whereParts = append(whereParts, fmt.Sprintf("slot_date >= $%d::date", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		whereParts = append(whereParts, fmt.Sprintf("slot_date <= $%d::date", len(args)))
	}
	if filter.IsBooked != nil {
		args = append(args, *filter.IsBooked)
		whereParts = append(whereParts, fmt.Sprintf("is_booked = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM availability_slots
		WHERE %s
		ORDER BY slot_date ASC, start_time ASC, id ASC
	`, slotColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]models.AvailabilitySlot, 0)
	for rows.Next() {
		var slot models.AvailabilitySlot
		if err := scanSlot(rows, &slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// HasOverlap reports whether any slot of the tutor on the date intersects
// [start, end). Intersection test: existing.start < end AND existing.end > start,
// which covers new-inside-existing, new-ends-inside and new-contains-existing.
// excludeSlotID skips the slot being updated; pass 0 on create.
func (r *AvailabilityRepository) HasOverlap(
	ctx context.Context,
	tutorProfileID int64,
	date time.Time,
	start, end time.Time,
	excludeSlotID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM availability_slots
			WHERE tutor_profile_id = $1
			  AND slot_date = $2::date
			  AND id <> $5
			  AND start_time < $4
			  AND end_time > $3
		)
	`
	var overlaps bool
	if err := r.db.QueryRow(ctx, query, tutorProfileID, date, start, end, excludeSlotID).Scan(&overlaps); err != nil {
		return false, err
	}
	return overlaps, nil
}

type UpdateSlotInput struct {
	SlotDate   Optional[time.Time]
	StartTime  Optional[time.Time]
	EndTime    Optional[time.Time]
	Recurrence Optional[string]
	ValidFrom  Optional[time.Time]
	ValidUntil Optional[time.Time]
}

// UpdateIfUnbooked applies a partial update guarded by is_booked = FALSE so a
// concurrently booked slot cannot be rewritten. Returns pgx.ErrNoRows when
// the slot is missing, foreign or booked.
func (r *AvailabilityRepository) UpdateIfUnbooked(
	ctx context.Context,
	tutorProfileID, slotID int64,
	input UpdateSlotInput,
) (*models.AvailabilitySlot, error) {
	query := `
		UPDATE availability_slots
		SET slot_date = CASE WHEN $1 THEN COALESCE($2, slot_date) ELSE slot_date END,
			start_time = CASE WHEN $3 THEN COALESCE($4, start_time) ELSE start_time END,
			end_time = CASE WHEN $5 THEN COALESCE($6, end_time) ELSE end_time END,
			recurrence = CASE WHEN $7 THEN $8 ELSE recurrence END,
			valid_from = CASE WHEN $9 THEN $10 ELSE valid_from END,
			valid_until = CASE WHEN $11 THEN $12 ELSE valid_until END,
			updated_at = NOW()
		WHERE id = $13 AND tutor_profile_id = $14 AND is_booked = FALSE
		RETURNING ` + slotColumns
	var slot models.AvailabilitySlot
	err := scanSlot(r.db.QueryRow(ctx, query,
		input.SlotDate.IsSet(), input.SlotDate.Pointer(),
		input.StartTime.IsSet(), input.StartTime.Pointer(),
		input.EndTime.IsSet(), input.EndTime.Pointer(),
		input.Recurrence.IsSet(), input.Recurrence.Pointer(),
		input.ValidFrom.IsSet(), input.ValidFrom.Pointer(),
		input.ValidUntil.IsSet(), input.ValidUntil.Pointer(),
		slotID, tutorProfileID,
	), &slot)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteIfUnbooked removes a slot under the same guard as UpdateIfUnbooked.
// Returns the number of rows deleted (0 means missing, foreign or booked).
func (r *AvailabilityRepository) DeleteIfUnbooked(ctx context.Context, tutorProfileID, slotID int64) (int64, error) {
	query := `DELETE FROM availability_slots WHERE id = $1 AND tutor_profile_id = $2 AND is_booked = FALSE`
	tag, err := r.db.Exec(ctx, query, slotID, tutorProfileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkBookedIfFree flips is_booked with a compare-and-swap; zero rows
// affected means another booking already claimed the slot.
func (r *AvailabilityRepository) MarkBookedIfFree(ctx context.Context, slotID int64) (bool, error) {
	query := `
		UPDATE availability_slots
		SET is_booked = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_booked = FALSE
	`
	tag, err := r.db.Exec(ctx, query, slotID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Release returns a slot to the bookable pool after its booking ends.
func (r *AvailabilityRepository) Release(ctx context.Context, slotID int64) error {
	query := `
		UPDATE availability_slots
		SET is_booked = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, slotID)
	return err
}
