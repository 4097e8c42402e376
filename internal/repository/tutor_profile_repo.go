package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type TutorProfileRepository struct {
	db DBTX
}

func NewTutorProfileRepository(db DBTX) *TutorProfileRepository {
	return &TutorProfileRepository{db: db}
}

const tutorProfileColumns = `id, user_id, bio, hourly_rate, experience_years, rating,
	total_reviews, completed_sessions, is_verified, created_at, updated_at`

func scanTutorProfile(row interface{ Scan(dest ...any) error }, p *models.TutorProfile) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.Bio,
		&p.HourlyRate,
		&p.ExperienceYears,
		&p.Rating,
		&p.TotalReviews,
		&p.CompletedSessions,
		&p.IsVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

type CreateTutorProfileInput struct {
	UserID          int64
	HourlyRate      float64
	ExperienceYears int
	Bio             *string
}

func (r *TutorProfileRepository) Create(ctx context.Context, input CreateTutorProfileInput) (*models.TutorProfile, error) {
	query := `
		INSERT INTO tutor_profiles (user_id, hourly_rate, experience_years, bio)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tutorProfileColumns
	var profile models.TutorProfile
	err := scanTutorProfile(r.db.QueryRow(ctx, query,
		input.UserID, input.HourlyRate, input.ExperienceYears, input.Bio,
	), &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *TutorProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error) {
	query := `SELECT ` + tutorProfileColumns + ` FROM tutor_profiles WHERE user_id = $1`
	var profile models.TutorProfile
	if err := scanTutorProfile(r.db.QueryRow(ctx, query, userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *TutorProfileRepository) GetByID(ctx context.Context, id int64) (*models.TutorProfile, error) {
	query := `SELECT ` + tutorProfileColumns + ` FROM tutor_profiles WHERE id = $1`
	var profile models.TutorProfile
	if err := scanTutorProfile(r.db.QueryRow(ctx, query, id), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdateTutorProfileInput struct {
	Bio             Optional[string]
	HourlyRate      Optional[float64]
	ExperienceYears Optional[int]
}

func (r *TutorProfileRepository) UpdatePartial(ctx context.Context, userID int64, input UpdateTutorProfileInput) (*models.TutorProfile, error) {
	query := `
		UPDATE tutor_profiles
		SET bio = CASE WHEN $1 THEN $2 ELSE bio END,
			hourly_rate = CASE WHEN $3 THEN COALESCE($4, hourly_rate) ELSE hourly_rate END,
			experience_years = CASE WHEN $5 THEN COALESCE($6, experience_years) ELSE experience_years END,
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING ` + tutorProfileColumns
	var profile models.TutorProfile
	err := scanTutorProfile(r.db.QueryRow(ctx, query,
		input.Bio.IsSet(), input.Bio.Pointer(),
		input.HourlyRate.IsSet(), input.HourlyRate.Pointer(),
		input.ExperienceYears.IsSet(), input.ExperienceYears.Pointer(),
		userID,
	), &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetAggregates writes the derived rating fields produced by a recompute.
func (r *TutorProfileRepository) SetAggregates(ctx context.Context, tutorProfileID int64, rating float64, totalReviews int) error {
	query := `
		UPDATE tutor_profiles
		SET rating = $2, total_reviews = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, tutorProfileID, rating, totalReviews)
	return err
}

func (r *TutorProfileRepository) IncrementCompletedSessions(ctx context.Context, tutorProfileID int64) error {
	query := `
		UPDATE tutor_profiles
		SET completed_sessions = completed_sessions + 1, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, tutorProfileID)
	return err
}

func (r *TutorProfileRepository) SetVerified(ctx context.Context, tutorProfileID int64, verified bool) (*models.TutorProfile, error) {
	query := `
		UPDATE tutor_profiles
		SET is_verified = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tutorProfileColumns
	var profile models.TutorProfile
	if err := scanTutorProfile(r.db.QueryRow(ctx, query, tutorProfileID, verified), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type TutorListFilter struct {
	CategoryID *int64
	Verified   *bool
	MinRating  *float64
	MaxRate    *float64
	SortBy     string // "rating" or "hourly_rate"
	Limit      int
	Offset     int
}

func (r *TutorProfileRepository) List(ctx context.Context, filter TutorListFilter) ([]models.TutorListing, int, error) {
	args := []any{}
	whereParts := []string{"u.is_active"}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		whereParts = append(whereParts, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM tutor_categories tc WHERE tc.tutor_profile_id = tp.id AND tc.category_id = $%d)",
			len(args)))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		whereParts = append(whereParts, fmt.Sprintf("tp.is_verified = $%d", len(args)))
	}
	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		whereParts = append(whereParts, fmt.Sprintf("tp.rating >= $%d", len(args)))
	}
	if filter.MaxRate != nil {
		args = append(args, *filter.MaxRate)
		whereParts = append(whereParts, fmt.Sprintf("tp.hourly_rate <= $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	orderBy := "tp.rating DESC, tp.total_reviews DESC"
	if filter.SortBy == "hourly_rate" {
		orderBy = "tp.hourly_rate ASC"
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM tutor_profiles tp
		JOIN users u ON u.id = tp.user_id
		WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT tp.id, tp.user_id, tp.bio, tp.hourly_rate, tp.experience_years, tp.rating,
			   tp.total_reviews, tp.completed_sessions, tp.is_verified, tp.created_at, tp.updated_at,
			   u.name
		FROM tutor_profiles tp
		JOIN users u ON u.id = tp.user_id
		WHERE %s
		ORDER BY %s, tp.id ASC
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := make([]models.TutorListing, 0)
	for rows.Next() {
		var listing models.TutorListing
		if err := rows.Scan(
			&listing.ID,
			&listing.UserID,
			&listing.Bio,
			&listing.HourlyRate,
			&listing.ExperienceYears,
			&listing.Rating,
			&listing.TotalReviews,
			&listing.CompletedSessions,
			&listing.IsVerified,
			&listing.CreatedAt,
			&listing.UpdatedAt,
			&listing.Name,
		); err != nil {
			return nil, 0, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
