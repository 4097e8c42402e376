package repository

import (
	"context"

	"github.com/arman-d/TutorAppBack/internal/models"
)

type StudentProfileRepository struct {
	db DBTX
}

func NewStudentProfileRepository(db DBTX) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

const studentProfileColumns = "id, user_id, grade_level, bio, created_at, updated_at"

func scanStudentProfile(row interface{ Scan(dest ...any) error }, p *models.StudentProfile) error {
	return row.Scan(&p.ID, &p.UserID, &p.GradeLevel, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
}

func (r *StudentProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO student_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *StudentProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	query := `SELECT ` + studentProfileColumns + ` FROM student_profiles WHERE user_id = $1`
	var profile models.StudentProfile
	if err := scanStudentProfile(r.db.QueryRow(ctx, query, userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *StudentProfileRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	query := `SELECT ` + studentProfileColumns + ` FROM student_profiles WHERE id = $1`
	var profile models.StudentProfile
	if err := scanStudentProfile(r.db.QueryRow(ctx, query, id), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdateStudentProfileInput struct {
	GradeLevel Optional[string]
	Bio        Optional[string]
}

func (r *StudentProfileRepository) UpdatePartial(ctx context.Context, userID int64, input UpdateStudentProfileInput) (*models.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET grade_level = CASE WHEN $1 THEN $2 ELSE grade_level END,
			bio = CASE WHEN $3 THEN $4 ELSE bio END,
			updated_at = NOW()
		WHERE user_id = $5
		RETURNING ` + studentProfileColumns
	var profile models.StudentProfile
	err := scanStudentProfile(r.db.QueryRow(ctx, query,
		input.GradeLevel.IsSet(), input.GradeLevel.Pointer(),
		input.Bio.IsSet(), input.Bio.Pointer(),
		userID,
	), &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
