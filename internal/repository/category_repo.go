package repository

import (
	"context"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = "id, name, description, is_active, created_at, updated_at"

func scanCategory(row interface{ Scan(dest ...any) error }, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CategoryRepository) Create(ctx context.Context, name string, description *string) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING ` + categoryColumns
	var category models.Category
	if err := scanCategory(r.db.QueryRow(ctx, query, name, description), &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	var category models.Category
	if err := scanCategory(r.db.QueryRow(ctx, query, id), &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active OR NOT $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var category models.Category
		if err := scanCategory(rows, &category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

type UpdateCategoryInput struct {
	Name        Optional[string]
	Description Optional[string]
	IsActive    Optional[bool]
}

func (r *CategoryRepository) UpdatePartial(ctx context.Context, id int64, input UpdateCategoryInput) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = CASE WHEN $1 THEN COALESCE($2, name) ELSE name END,
			description = CASE WHEN $3 THEN $4 ELSE description END,
			is_active = CASE WHEN $5 THEN COALESCE($6, is_active) ELSE is_active END,
			updated_at = NOW()
		WHERE id = $7
		RETURNING ` + categoryColumns
	var category models.Category
	err := scanCategory(r.db.QueryRow(ctx, query,
		input.Name.IsSet(), input.Name.Pointer(),
		input.Description.IsSet(), input.Description.Pointer(),
		input.IsActive.IsSet(), input.IsActive.Pointer(),
		id,
	), &category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteIfUnreferenced removes a category only when no booking or tutor
// assignment points at it. Returns rows deleted.
func (r *CategoryRepository) DeleteIfUnreferenced(ctx context.Context, id int64) (int64, error) {
	query := `
		DELETE FROM categories
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE category_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM tutor_categories WHERE category_id = $1)
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Assign relies on UNIQUE(tutor_profile_id, category_id); duplicates surface
// as pgconn 23505.
func (r *CategoryRepository) Assign(ctx context.Context, tutorProfileID, categoryID int64, proficiency *string) (*models.TutorCategory, error) {
	query := `
		INSERT INTO tutor_categories (tutor_profile_id, category_id, proficiency_level)
		VALUES ($1, $2, $3)
		RETURNING id, tutor_profile_id, category_id, proficiency_level, created_at
	`
	var tc models.TutorCategory
	err := r.db.QueryRow(ctx, query, tutorProfileID, categoryID, proficiency).Scan(
		&tc.ID, &tc.TutorProfileID, &tc.CategoryID, &tc.ProficiencyLevel, &tc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *CategoryRepository) Unassign(ctx context.Context, tutorProfileID, categoryID int64) (int64, error) {
	query := `DELETE FROM tutor_categories WHERE tutor_profile_id = $1 AND category_id = $2`
	tag, err := r.db.Exec(ctx, query, tutorProfileID, categoryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *CategoryRepository) ListForTutor(ctx context.Context, tutorProfileID int64) ([]models.TutorCategory, error) {
	query := `
		SELECT tc.id, tc.tutor_profile_id, tc.category_id, tc.proficiency_level, tc.created_at, c.name
		FROM tutor_categories tc
		JOIN categories c ON c.id = tc.category_id
		WHERE tc.tutor_profile_id = $1
		ORDER BY c.name ASC
	`
	rows, err := r.db.Query(ctx, query, tutorProfileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.TutorCategory, 0)
	for rows.Next() {
		var tc models.TutorCategory
		if err := rows.Scan(&tc.ID, &tc.TutorProfileID, &tc.CategoryID, &tc.ProficiencyLevel, &tc.CreatedAt, &tc.CategoryName); err != nil {
			return nil, err
		}
		assignments = append(assignments, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}
