package services

import (
	"context"

	"github.com/arman-d/TutorAppBack/internal/repository"
)

// RatingService is the single owner of the derived rating fields. Every
// review mutation calls Recompute on the same transaction it mutated in, so
// TutorProfile.rating is always the mean of the tutor's review ratings and
// total_reviews the count. A full recompute avoids drift from incremental
// math under partial failure.
type RatingService struct{}

func NewRatingService() *RatingService {
	return &RatingService{}
}

func (s *RatingService) Recompute(ctx context.Context, db repository.DBTX, tutorProfileID int64) error {
	reviewRepo := repository.NewReviewRepository(db)
	tutorProfileRepo := repository.NewTutorProfileRepository(db)

	mean, count, err := reviewRepo.AggregateForTutor(ctx, tutorProfileID)
	if err != nil {
		return err
	}
	return tutorProfileRepo.SetAggregates(ctx, tutorProfileID, mean, count)
}
