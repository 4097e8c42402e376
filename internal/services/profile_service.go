package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var ErrAlreadyTutor = errors.New("user already has a tutor profile")

type ProfileService struct {
	db                 *pgxpool.Pool
	userRepo           *repository.UserRepository
	studentProfileRepo *repository.StudentProfileRepository
	tutorProfileRepo   *repository.TutorProfileRepository
	categoryRepo       *repository.CategoryRepository
}

func NewProfileService(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	studentProfileRepo *repository.StudentProfileRepository,
	tutorProfileRepo *repository.TutorProfileRepository,
	categoryRepo *repository.CategoryRepository,
) *ProfileService {
	return &ProfileService{
		db:                 db,
		userRepo:           userRepo,
		studentProfileRepo: studentProfileRepo,
		tutorProfileRepo:   tutorProfileRepo,
		categoryRepo:       categoryRepo,
	}
}

func (s *ProfileService) GetStudentProfile(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	return s.studentProfileRepo.GetByUserID(ctx, userID)
}

func (s *ProfileService) UpdateStudentProfile(ctx context.Context, userID int64, input repository.UpdateStudentProfileInput) (*models.StudentProfile, error) {
	return s.studentProfileRepo.UpdatePartial(ctx, userID, input)
}

func (s *ProfileService) GetTutorProfile(ctx context.Context, userID int64) (*models.TutorProfile, error) {
	return s.tutorProfileRepo.GetByUserID(ctx, userID)
}

func (s *ProfileService) UpdateTutorProfile(ctx context.Context, userID int64, input repository.UpdateTutorProfileInput) (*models.TutorProfile, error) {
	if rate := input.HourlyRate.Pointer(); rate != nil && *rate < 0 {
		return nil, ErrInvalidInput
	}
	if years := input.ExperienceYears.Pointer(); years != nil && *years < 0 {
		return nil, ErrInvalidInput
	}
	return s.tutorProfileRepo.UpdatePartial(ctx, userID, input)
}

type UpgradeToTutorInput struct {
	HourlyRate      float64
	ExperienceYears int
	Bio             *string
}

// UpgradeToTutor flips a student account to the tutor role and creates the
// tutor profile in one transaction. Derived fields start at zero.
func (s *ProfileService) UpgradeToTutor(ctx context.Context, userID int64, input UpgradeToTutorInput) (*models.TutorProfile, error) {
	if input.HourlyRate < 0 || input.ExperienceYears < 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleTutor {
		return nil, ErrAlreadyTutor
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txUserRepo := repository.NewUserRepository(tx)
	txTutorProfileRepo := repository.NewTutorProfileRepository(tx)

	profile, err := txTutorProfileRepo.Create(ctx, repository.CreateTutorProfileInput{
		UserID:          userID,
		HourlyRate:      input.HourlyRate,
		ExperienceYears: input.ExperienceYears,
		Bio:             input.Bio,
	})
	if err != nil {
		return nil, err
	}
	if err := txUserRepo.UpdateRole(ctx, userID, models.RoleTutor); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListTutors is the public discovery surface: simple filter and sort only.
func (s *ProfileService) ListTutors(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error) {
	return s.tutorProfileRepo.List(ctx, filter)
}

func (s *ProfileService) GetTutorListing(ctx context.Context, tutorProfileID int64) (*models.TutorListing, error) {
	profile, err := s.tutorProfileRepo.GetByID(ctx, tutorProfileID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListForTutor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &models.TutorListing{
		TutorProfile: *profile,
		Name:         user.Name,
		Categories:   categories,
	}, nil
}
