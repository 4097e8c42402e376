package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type categoryApplicationService interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Create(ctx context.Context, name string, description *string) (*models.Category, error)
	Update(ctx context.Context, id int64, input repository.UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	AssignToTutor(ctx context.Context, tutorUserID, categoryID int64, proficiency *string) (*models.TutorCategory, error)
	UnassignFromTutor(ctx context.Context, tutorUserID, categoryID int64) error
	ListForTutor(ctx context.Context, tutorUserID int64) ([]models.TutorCategory, error)
}

type CategoryHandler struct {
	service categoryApplicationService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListCategories is public and returns only active categories unless the
// caller explicitly asks for all.
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	activeOnly := c.Query("include_inactive") != "true"
	categories, err := h.service.List(c.Context(), activeOnly)
	if err != nil {
		return mapCategoryError(c, err)
	}
	return respondOK(c, fiber.Map{"categories": categories})
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "name is required")
	}

	category, err := h.service.Create(c.Context(), strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return mapCategoryError(c, err)
	}
	return respondCreated(c, fiber.Map{"category": category})
}

type updateCategoryRequest struct {
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
	IsActive    json.RawMessage `json:"is_active"`
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid category id")
	}

	var req updateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var input repository.UpdateCategoryInput
	if input.Name, err = optionalString(req.Name); err != nil {
		return respondError(c, fiber.StatusBadRequest, "name must be a string")
	}
	if input.Name.IsSet() && input.Name.Pointer() == nil {
		return respondError(c, fiber.StatusBadRequest, "name cannot be null")
	}
	if input.Description, err = optionalString(req.Description); err != nil {
		return respondError(c, fiber.StatusBadRequest, "description must be a string or null")
	}
	if input.IsActive, err = optionalBool(req.IsActive); err != nil {
		return respondError(c, fiber.StatusBadRequest, "is_active must be a boolean")
	}
	if input.IsActive.IsSet() && input.IsActive.Pointer() == nil {
		return respondError(c, fiber.StatusBadRequest, "is_active cannot be null")
	}

	category, err := h.service.Update(c.Context(), categoryID, input)
	if err != nil {
		return mapCategoryError(c, err)
	}
	return respondOK(c, fiber.Map{"category": category})
}

func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid category id")
	}

	if err := h.service.Delete(c.Context(), categoryID); err != nil {
		return mapCategoryError(c, err)
	}
	return respondMessage(c, "Category deleted")
}

type assignCategoryRequest struct {
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Proficiency *string `json:"proficiency"`
}

func (h *CategoryHandler) AssignCategory(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req assignCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "category_id is required")
	}

	assignment, err := h.service.AssignToTutor(c.Context(), tutorUserID, req.CategoryID, req.Proficiency)
	if err != nil {
		return mapCategoryError(c, err)
	}
	return respondCreated(c, fiber.Map{"assignment": assignment})
}

func (h *CategoryHandler) UnassignCategory(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	categoryID, err := parseIDParam(c, "categoryId")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid category id")
	}

	if err := h.service.UnassignFromTutor(c.Context(), tutorUserID, categoryID); err != nil {
		return mapCategoryError(c, err)
	}
	return respondMessage(c, "Category unassigned")
}

func (h *CategoryHandler) ListTutorCategories(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	assignments, err := h.service.ListForTutor(c.Context(), tutorUserID)
	if err != nil {
		return mapCategoryError(c, err)
	}
	return respondOK(c, fiber.Map{"categories": assignments})
}

func mapCategoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDuplicateCategory):
		return respondError(c, fiber.StatusConflict, "Category already exists")
	case errors.Is(err, services.ErrDuplicateAssignment):
		return respondError(c, fiber.StatusConflict, "Category already assigned")
	case errors.Is(err, services.ErrCategoryInUse):
		return respondError(c, fiber.StatusConflict, "Category is in use and cannot be deleted")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process category request")
	}
}
