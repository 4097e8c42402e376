package repository

import (
	"context"
	"fmt"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, booking_id, student_profile_id, tutor_profile_id, rating, comment,
	is_verified, created_at, updated_at`

func scanReview(row interface{ Scan(dest ...any) error }, rv *models.Review) error {
	return row.Scan(
		&rv.ID,
		&rv.BookingID,
		&rv.StudentProfileID,
		&rv.TutorProfileID,
		&rv.Rating,
		&rv.Comment,
		&rv.IsVerified,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
}

type CreateReviewInput struct {
	BookingID        int64
	StudentProfileID int64
	TutorProfileID   int64
	Rating           int
	Comment          *string
}

// Create relies on the UNIQUE(booking_id) constraint; a duplicate surfaces as
// a pgconn 23505 error.
func (r *ReviewRepository) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	query := `
		INSERT INTO reviews (booking_id, student_profile_id, tutor_profile_id, rating, comment, is_verified)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + reviewColumns
	var review models.Review
	err := scanReview(r.db.QueryRow(ctx, query,
		input.BookingID,
		input.StudentProfileID,
		input.TutorProfileID,
		input.Rating,
		input.Comment,
	), &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	var review models.Review
	if err := scanReview(r.db.QueryRow(ctx, query, reviewID), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// GetForStudent resolves a review only when owned by the student; foreign
// reviews look missing.
func (r *ReviewRepository) GetForStudent(ctx context.Context, studentProfileID, reviewID int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 AND student_profile_id = $2`
	var review models.Review
	if err := scanReview(r.db.QueryRow(ctx, query, reviewID, studentProfileID), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorProfileID int64, limit, offset int) ([]models.Review, int, error) {
	return r.list(ctx, "tutor_profile_id", tutorProfileID, limit, offset)
}

func (r *ReviewRepository) ListByStudent(ctx context.Context, studentProfileID int64, limit, offset int) ([]models.Review, int, error) {
	return r.list(ctx, "student_profile_id", studentProfileID, limit, offset)
}

func (r *ReviewRepository) list(ctx context.Context, ownerColumn string, ownerID int64, limit, offset int) ([]models.Review, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reviews WHERE %s = $1`, ownerColumn)
	if err := r.db.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews
		WHERE %s = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, reviewColumns, ownerColumn)

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := scanReview(rows, &review); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

type UpdateReviewInput struct {
	Rating  Optional[int]
	Comment Optional[string]
}

func (r *ReviewRepository) UpdatePartial(ctx context.Context, reviewID int64, input UpdateReviewInput) (*models.Review, error) {
	query := `
		UPDATE reviews
		SET rating = CASE WHEN $1 THEN COALESCE($2, rating) ELSE rating END,
			comment = CASE WHEN $3 THEN $4 ELSE comment END,
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + reviewColumns
	var review models.Review
	err := scanReview(r.db.QueryRow(ctx, query,
		input.Rating.IsSet(), input.Rating.Pointer(),
		input.Comment.IsSet(), input.Comment.Pointer(),
		reviewID,
	), &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, reviewID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AggregateForTutor returns the mean rating and review count for a tutor;
// zero reviews yields (0, 0).
func (r *ReviewRepository) AggregateForTutor(ctx context.Context, tutorProfileID int64) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE tutor_profile_id = $1
	`
	var mean float64
	var count int
	if err := r.db.QueryRow(ctx, query, tutorProfileID).Scan(&mean, &count); err != nil {
		return 0, 0, err
	}
	return mean, count, nil
}
