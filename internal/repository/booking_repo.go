package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, student_profile_id, tutor_profile_id, category_id, availability_slot_id,
	booking_date, start_time, end_time, duration_minutes, amount, status, is_paid,
	meeting_link, notes, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }, b *models.Booking) error {
	return row.Scan(
		&b.ID,
		&b.StudentProfileID,
		&b.TutorProfileID,
		&b.CategoryID,
		&b.AvailabilitySlotID,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&b.Amount,
		&b.Status,
		&b.IsPaid,
		&b.MeetingLink,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

type CreateBookingInput struct {
	StudentProfileID   int64
	TutorProfileID     int64
	CategoryID         int64
	AvailabilitySlotID int64
	BookingDate        time.Time
	StartTime          time.Time
	EndTime            time.Time
	DurationMinutes    int
	Amount             float64
	Notes              *string
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (student_profile_id, tutor_profile_id, category_id, availability_slot_id,
			booking_date, start_time, end_time, duration_minutes, amount, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'PENDING', $10)
		RETURNING ` + bookingColumns
	var booking models.Booking
	err := scanBooking(r.db.QueryRow(ctx, query,
		input.StudentProfileID,
		input.TutorProfileID,
		input.CategoryID,
		input.AvailabilitySlotID,
		input.BookingDate,
		input.StartTime,
		input.EndTime,
		input.DurationMinutes,
		input.Amount,
		input.Notes,
	), &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

type BookingListFilter struct {
	StudentProfileID int64
	TutorProfileID   int64
	Status           string
	DateFrom         *time.Time
	DateTo           *time.Time
	Limit            int
	Offset           int
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, int, error) {
	args := []any{}
	whereParts := []string{}

	if filter.StudentProfileID != 0 {
		args = append(args, filter.StudentProfileID)
		whereParts = append(whereParts, fmt.Sprintf("student_profile_id = $%d", len(args)))
	}
	if filter.TutorProfileID != 0 {
		args = append(args, filter.TutorProfileID)
		whereParts = append(whereParts, fmt.Sprintf("tutor_profile_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, strings.ToUpper(status))
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		whereParts = append(whereParts, fmt.Sprintf("booking_date >= $%d::date", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		whereParts = append(whereParts, fmt.Sprintf("booking_date <= $%d::date", len(args)))
	}
	if len(whereParts) == 0 {
		whereParts = append(whereParts, "TRUE")
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE %s
		ORDER BY booking_date DESC, start_time DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, bookingColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// UpdateStatusIfCurrent performs the status transition as a compare-and-swap
// so two concurrent updates cannot both apply. Returns pgx.ErrNoRows when the
// booking no longer carries currentStatus.
func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus, nextStatus models.BookingStatus,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) SetMeetingLink(ctx context.Context, bookingID int64, link string) error {
	query := `UPDATE bookings SET meeting_link = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, bookingID, link)
	return err
}

// AppendNote adds an audit line to the booking notes.
func (r *BookingRepository) AppendNote(ctx context.Context, bookingID int64, note string) error {
	query := `
		UPDATE bookings
		SET notes = CONCAT_WS(E'\n', notes, $2::text), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, bookingID, note)
	return err
}

// StatsForTutor aggregates per-status counts and paid, completed earnings.
func (r *BookingRepository) StatsForTutor(ctx context.Context, tutorProfileID int64) (*models.BookingStats, error) {
	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE status = 'PENDING'),
			   COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
			   COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			   COUNT(*) FILTER (WHERE status = 'CANCELLED'),
			   COUNT(*) FILTER (WHERE status = 'RESCHEDULED'),
			   COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED' AND is_paid), 0)
		FROM bookings
		WHERE tutor_profile_id = $1
	`
	var stats models.BookingStats
	err := r.db.QueryRow(ctx, query, tutorProfileID).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Completed,
		&stats.Cancelled,
		&stats.Rescheduled,
		&stats.TotalEarnings,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
