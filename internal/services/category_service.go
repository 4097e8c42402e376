package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var (
	ErrDuplicateCategory   = errors.New("category already exists")
	ErrDuplicateAssignment = errors.New("category already assigned to tutor")
	ErrCategoryInUse       = errors.New("category is referenced and cannot be deleted")
)

type CategoryService struct {
	categoryRepo     *repository.CategoryRepository
	tutorProfileRepo tutorProfileReader
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, tutorProfileRepo tutorProfileReader) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, tutorProfileRepo: tutorProfileRepo}
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return s.categoryRepo.List(ctx, activeOnly)
}

func (s *CategoryService) Create(ctx context.Context, name string, description *string) (*models.Category, error) {
	category, err := s.categoryRepo.Create(ctx, name, description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repository.UniqueViolation {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, input repository.UpdateCategoryInput) (*models.Category, error) {
	return s.categoryRepo.UpdatePartial(ctx, id, input)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}
	deleted, err := s.categoryRepo.DeleteIfUnreferenced(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrCategoryInUse
	}
	return nil
}

// AssignToTutor links the calling tutor to a category with a proficiency
// label. Duplicate pairs are rejected by the unique constraint.
func (s *CategoryService) AssignToTutor(ctx context.Context, tutorUserID, categoryID int64, proficiency *string) (*models.TutorCategory, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	assignment, err := s.categoryRepo.Assign(ctx, tutor.ID, categoryID, proficiency)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repository.UniqueViolation {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}
	return assignment, nil
}

func (s *CategoryService) UnassignFromTutor(ctx context.Context, tutorUserID, categoryID int64) error {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return err
	}
	removed, err := s.categoryRepo.Unassign(ctx, tutor.ID, categoryID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *CategoryService) ListForTutor(ctx context.Context, tutorUserID int64) ([]models.TutorCategory, error) {
	tutor, err := s.tutorProfileRepo.GetByUserID(ctx, tutorUserID)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.ListForTutor(ctx, tutor.ID)
}
