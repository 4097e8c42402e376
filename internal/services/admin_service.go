package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

// AdminService covers moderation: user listing and (de)activation, tutor
// verification, review takedown and platform stats.
type AdminService struct {
	db               *pgxpool.Pool
	userRepo         *repository.UserRepository
	tutorProfileRepo *repository.TutorProfileRepository
	reviewRepo       *repository.ReviewRepository
	statsRepo        *repository.StatsRepository
	ratingService    *RatingService
}

func NewAdminService(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	tutorProfileRepo *repository.TutorProfileRepository,
	reviewRepo *repository.ReviewRepository,
	statsRepo *repository.StatsRepository,
	ratingService *RatingService,
) *AdminService {
	return &AdminService{
		db:               db,
		userRepo:         userRepo,
		tutorProfileRepo: tutorProfileRepo,
		reviewRepo:       reviewRepo,
		statsRepo:        statsRepo,
		ratingService:    ratingService,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserListFilter) ([]models.User, int, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *AdminService) SetUserActive(ctx context.Context, userID int64, active bool) (*models.User, error) {
	return s.userRepo.SetActive(ctx, userID, active)
}

func (s *AdminService) VerifyTutor(ctx context.Context, tutorProfileID int64) (*models.TutorProfile, error) {
	return s.tutorProfileRepo.SetVerified(ctx, tutorProfileID, true)
}

// DeleteReview removes any review and recomputes the tutor's rating in the
// same transaction, keeping the derived fields consistent.
func (s *AdminService) DeleteReview(ctx context.Context, reviewID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReviewRepo := repository.NewReviewRepository(tx)

	review, err := txReviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if _, err := txReviewRepo.Delete(ctx, review.ID); err != nil {
		return err
	}
	if err := s.ratingService.Recompute(ctx, tx, review.TutorProfileID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *AdminService) PlatformStats(ctx context.Context) (*repository.PlatformCounts, error) {
	return s.statsRepo.PlatformCounts(ctx)
}
