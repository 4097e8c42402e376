package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type adminApplicationService interface {
	ListUsers(ctx context.Context, filter repository.UserListFilter) ([]models.User, int, error)
	SetUserActive(ctx context.Context, userID int64, active bool) (*models.User, error)
	VerifyTutor(ctx context.Context, tutorProfileID int64) (*models.TutorProfile, error)
	DeleteReview(ctx context.Context, reviewID int64) error
	PlatformStats(ctx context.Context) (*repository.PlatformCounts, error)
}

type AdminHandler struct {
	service adminApplicationService
}

func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var filter repository.UserListFilter
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "role must be student, tutor or admin")
		}
		filter.Role = role.String()
	}
	filter.Email = strings.ToLower(strings.TrimSpace(c.Query("email")))

	page := parsePaging(c)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	users, total, err := h.service.ListUsers(c.Context(), filter)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to list users")
	}
	return respondPage(c, fiber.Map{"users": users}, buildPaginationMeta(page.Page, page.Limit, total))
}

type setUserActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req setUserActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.IsActive == nil {
		return respondError(c, fiber.StatusBadRequest, "is_active is required")
	}

	user, err := h.service.SetUserActive(c.Context(), userID, *req.IsActive)
	if err != nil {
		return mapAdminError(c, err, "User not found")
	}
	return respondOK(c, fiber.Map{"user": user})
}

func (h *AdminHandler) VerifyTutor(c *fiber.Ctx) error {
	tutorProfileID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid tutor id")
	}

	profile, err := h.service.VerifyTutor(c.Context(), tutorProfileID)
	if err != nil {
		return mapAdminError(c, err, "Tutor not found")
	}
	return respondOK(c, fiber.Map{"profile": profile})
}

func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid review id")
	}

	if err := h.service.DeleteReview(c.Context(), reviewID); err != nil {
		return mapAdminError(c, err, "Review not found")
	}
	return respondMessage(c, "Review deleted")
}

func (h *AdminHandler) PlatformStats(c *fiber.Ctx) error {
	stats, err := h.service.PlatformStats(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to load platform stats")
	}
	return respondOK(c, fiber.Map{"stats": stats})
}

func mapAdminError(c *fiber.Ctx, err error, notFoundMessage string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return respondError(c, fiber.StatusNotFound, notFoundMessage)
	}
	return respondError(c, fiber.StatusInternalServerError, "Failed to process admin request")
}
