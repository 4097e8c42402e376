package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type profileApplicationService interface {
	GetStudentProfile(ctx context.Context, userID int64) (*models.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, userID int64, input repository.UpdateStudentProfileInput) (*models.StudentProfile, error)
	GetTutorProfile(ctx context.Context, userID int64) (*models.TutorProfile, error)
	UpdateTutorProfile(ctx context.Context, userID int64, input repository.UpdateTutorProfileInput) (*models.TutorProfile, error)
	UpgradeToTutor(ctx context.Context, userID int64, input services.UpgradeToTutorInput) (*models.TutorProfile, error)
	ListTutors(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error)
	GetTutorListing(ctx context.Context, tutorProfileID int64) (*models.TutorListing, error)
}

type ProfileHandler struct {
	service profileApplicationService
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetStudentProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := h.service.GetStudentProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondOK(c, fiber.Map{"profile": profile})
}

type updateStudentProfileRequest struct {
	GradeLevel json.RawMessage `json:"grade_level"`
	Bio        json.RawMessage `json:"bio"`
}

func (h *ProfileHandler) UpdateStudentProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req updateStudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var input repository.UpdateStudentProfileInput
	if input.GradeLevel, err = optionalString(req.GradeLevel); err != nil {
		return respondError(c, fiber.StatusBadRequest, "grade_level must be a string or null")
	}
	if input.Bio, err = optionalString(req.Bio); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bio must be a string or null")
	}

	profile, err := h.service.UpdateStudentProfile(c.Context(), userID, input)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondOK(c, fiber.Map{"profile": profile})
}

func (h *ProfileHandler) GetTutorProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := h.service.GetTutorProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondOK(c, fiber.Map{"profile": profile})
}

type updateTutorProfileRequest struct {
	Bio             json.RawMessage `json:"bio"`
	HourlyRate      json.RawMessage `json:"hourly_rate"`
	ExperienceYears json.RawMessage `json:"experience_years"`
}

func (h *ProfileHandler) UpdateTutorProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req updateTutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var input repository.UpdateTutorProfileInput
	if input.Bio, err = optionalString(req.Bio); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bio must be a string or null")
	}
	if input.HourlyRate, err = optionalFloat(req.HourlyRate); err != nil {
		return respondError(c, fiber.StatusBadRequest, "hourly_rate must be a number")
	}
	if input.HourlyRate.IsSet() && input.HourlyRate.Pointer() == nil {
		return respondError(c, fiber.StatusBadRequest, "hourly_rate cannot be null")
	}
	if input.ExperienceYears, err = optionalInt(req.ExperienceYears); err != nil {
		return respondError(c, fiber.StatusBadRequest, "experience_years must be an integer")
	}
	if input.ExperienceYears.IsSet() && input.ExperienceYears.Pointer() == nil {
		return respondError(c, fiber.StatusBadRequest, "experience_years cannot be null")
	}

	profile, err := h.service.UpdateTutorProfile(c.Context(), userID, input)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondOK(c, fiber.Map{"profile": profile})
}

type upgradeToTutorRequest struct {
	HourlyRate      float64 `json:"hourly_rate" validate:"required,gt=0"`
	ExperienceYears int     `json:"experience_years" validate:"min=0"`
	Bio             *string `json:"bio"`
}

func (h *ProfileHandler) UpgradeToTutor(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req upgradeToTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "hourly_rate must be positive and experience_years non-negative")
	}

	profile, err := h.service.UpgradeToTutor(c.Context(), userID, services.UpgradeToTutorInput{
		HourlyRate:      req.HourlyRate,
		ExperienceYears: req.ExperienceYears,
		Bio:             req.Bio,
	})
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondCreated(c, fiber.Map{"profile": profile})
}

// ListTutors is the public discovery endpoint; no authentication required.
func (h *ProfileHandler) ListTutors(c *fiber.Ctx) error {
	var filter repository.TutorListFilter
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return respondError(c, fiber.StatusBadRequest, "category_id must be a positive integer")
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(c.Query("verified")); raw != "" {
		verified := raw == "true"
		filter.Verified = &verified
	}
	if raw := strings.TrimSpace(c.Query("min_rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			return respondError(c, fiber.StatusBadRequest, "min_rating must be between 0 and 5")
		}
		filter.MinRating = &rating
	}
	if raw := strings.TrimSpace(c.Query("max_rate")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return respondError(c, fiber.StatusBadRequest, "max_rate must be a non-negative number")
		}
		filter.MaxRate = &rate
	}
	switch sortBy := strings.TrimSpace(c.Query("sort_by")); sortBy {
	case "", "rating", "hourly_rate":
		filter.SortBy = sortBy
	default:
		return respondError(c, fiber.StatusBadRequest, "sort_by must be rating or hourly_rate")
	}

	page := parsePaging(c)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	tutors, total, err := h.service.ListTutors(c.Context(), filter)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondPage(c, fiber.Map{"tutors": tutors}, buildPaginationMeta(page.Page, page.Limit, total))
}

func (h *ProfileHandler) GetTutor(c *fiber.Ctx) error {
	tutorProfileID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid tutor id")
	}

	listing, err := h.service.GetTutorListing(c.Context(), tutorProfileID)
	if err != nil {
		return mapProfileError(c, err)
	}
	return respondOK(c, fiber.Map{"tutor": listing})
}

func mapProfileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyTutor):
		return respondError(c, fiber.StatusConflict, "User already has a tutor profile")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Profile not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process profile request")
	}
}
