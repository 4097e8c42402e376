package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type dashboardApplicationService interface {
	For(ctx context.Context, userID int64, role models.Role) (any, error)
}

type DashboardHandler struct {
	service dashboardApplicationService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	role, ok := c.Locals("role").(models.Role)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	dashboard, err := h.service.For(c.Context(), userID, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	return respondOK(c, fiber.Map{"dashboard": dashboard})
}
