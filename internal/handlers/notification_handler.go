package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type notificationApplicationService interface {
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type NotificationHandler struct {
	service notificationApplicationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	unreadOnly := c.Query("unread") == "true"
	page := parsePaging(c)

	notifications, total, err := h.service.List(c.Context(), userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to load notifications")
	}
	return respondPage(c, fiber.Map{"notifications": notifications}, buildPaginationMeta(page.Page, page.Limit, total))
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid notification id")
	}

	if err := h.service.MarkRead(c.Context(), userID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Notification not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to mark notification read")
	}
	return respondMessage(c, "Notification marked read")
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	count, err := h.service.CountUnread(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to count notifications")
	}
	return respondOK(c, fiber.Map{"unread": count})
}
