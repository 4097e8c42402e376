package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var (
	ErrDuplicateReview = errors.New("booking already has a review")
	ErrNotCompleted    = errors.New("booking is not completed")
)

type ReviewService struct {
	db                 *pgxpool.Pool
	reviewRepo         *repository.ReviewRepository
	studentProfileRepo studentProfileReader
	tutorProfileRepo   tutorProfileReader
	ratingService      *RatingService
}

func NewReviewService(
	db *pgxpool.Pool,
	reviewRepo *repository.ReviewRepository,
	studentProfileRepo studentProfileReader,
	tutorProfileRepo tutorProfileReader,
	ratingService *RatingService,
) *ReviewService {
	return &ReviewService{
		db:                 db,
		reviewRepo:         reviewRepo,
		studentProfileRepo: studentProfileRepo,
		tutorProfileRepo:   tutorProfileRepo,
		ratingService:      ratingService,
	}
}

type CreateReviewInput struct {
	BookingID int64
	Rating    int
	Comment   *string
}

// CreateReview inserts the review and recomputes the tutor's rating in one
// transaction. Uniqueness per booking is enforced by the database constraint,
// not an application read.
func (s *ReviewService) CreateReview(ctx context.Context, studentUserID int64, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
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

	txBookingRepo := repository.NewBookingRepository(tx)
	txReviewRepo := repository.NewReviewRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	booking, err := txBookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.StudentProfileID != student.ID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingCompleted {
		return nil, ErrNotCompleted
	}

	review, err := txReviewRepo.Create(ctx, repository.CreateReviewInput{
		BookingID:        booking.ID,
		StudentProfileID: student.ID,
		TutorProfileID:   booking.TutorProfileID,
		Rating:           input.Rating,
		Comment:          input.Comment,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repository.UniqueViolation {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	if err := s.ratingService.Recompute(ctx, tx, booking.TutorProfileID); err != nil {
		return nil, err
	}

	tutor, err := repository.NewTutorProfileRepository(tx).GetByID(ctx, booking.TutorProfileID)
	if err != nil {
		return nil, err
	}
	if err := txNotificationRepo.Create(ctx, repository.CreateNotificationInput{
		UserID:    tutor.UserID,
		Title:     "New review received",
		Message:   fmt.Sprintf("A student rated a session %d/5", input.Rating),
		Type:      models.NotificationReview,
		RelatedID: &review.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return review, nil
}

type UpdateReviewInput struct {
	Rating  repository.Optional[int]
	Comment repository.Optional[string]
}

func (s *ReviewService) UpdateReview(ctx context.Context, studentUserID, reviewID int64, input UpdateReviewInput) (*models.Review, error) {
	if rating := input.Rating.Pointer(); rating != nil && (*rating < 1 || *rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
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

	txReviewRepo := repository.NewReviewRepository(tx)

	existing, err := txReviewRepo.GetForStudent(ctx, student.ID, reviewID)
	if err != nil {
		return nil, err
	}

	review, err := txReviewRepo.UpdatePartial(ctx, existing.ID, repository.UpdateReviewInput{
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ratingService.Recompute(ctx, tx, review.TutorProfileID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, studentUserID, reviewID int64) error {
	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReviewRepo := repository.NewReviewRepository(tx)

	existing, err := txReviewRepo.GetForStudent(ctx, student.ID, reviewID)
	if err != nil {
		return err
	}
	if _, err := txReviewRepo.Delete(ctx, existing.ID); err != nil {
		return err
	}
	if err := s.ratingService.Recompute(ctx, tx, existing.TutorProfileID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *ReviewService) GetForStudent(ctx context.Context, studentUserID, reviewID int64) (*models.Review, error) {
	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}
	return s.reviewRepo.GetForStudent(ctx, student.ID, reviewID)
}

func (s *ReviewService) ListForStudent(ctx context.Context, studentUserID int64, limit, offset int) ([]models.Review, int, error) {
	student, err := s.studentProfileRepo.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByStudent(ctx, student.ID, limit, offset)
}

func (s *ReviewService) ListForTutor(ctx context.Context, tutorUserID int64, limit, offset int) ([]models.Review, int, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTutor(ctx, tutor.ID, limit, offset)
}
