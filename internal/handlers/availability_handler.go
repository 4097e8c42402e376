package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

const dateLayout = "2006-01-02"

type availabilityApplicationService interface {
	CreateSlot(ctx context.Context, tutorUserID int64, input services.CreateSlotInput) (*models.AvailabilitySlot, error)
	ListSlots(ctx context.Context, tutorUserID int64, filter repository.SlotListFilter) ([]models.AvailabilitySlot, error)
	GetSlot(ctx context.Context, tutorUserID, slotID int64) (*models.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, tutorUserID, slotID int64, input services.UpdateSlotInput) (*models.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, tutorUserID, slotID int64) error
}

type AvailabilityHandler struct {
	service availabilityApplicationService
}

func NewAvailabilityHandler(service *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

type createSlotRequest struct {
	SlotDate   string  `json:"slot_date" validate:"required"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	Recurrence *string `json:"recurrence"`
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

func (h *AvailabilityHandler) CreateSlot(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "slot_date, start_time and end_time are required")
	}

	slotDate, err := time.Parse(dateLayout, strings.TrimSpace(req.SlotDate))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "slot_date must be YYYY-MM-DD")
	}
	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "start_time must be a valid RFC3339 timestamp")
	}
	endTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndTime))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "end_time must be a valid RFC3339 timestamp")
	}

	input := services.CreateSlotInput{
		SlotDate:   slotDate,
		StartTime:  startTime.UTC(),
		EndTime:    endTime.UTC(),
		Recurrence: req.Recurrence,
	}
	if req.ValidFrom != nil {
		from, err := time.Parse(dateLayout, *req.ValidFrom)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "valid_from must be YYYY-MM-DD")
		}
		input.ValidFrom = &from
	}
	if req.ValidUntil != nil {
		until, err := time.Parse(dateLayout, *req.ValidUntil)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "valid_until must be YYYY-MM-DD")
		}
		input.ValidUntil = &until
	}

	slot, err := h.service.CreateSlot(c.Context(), tutorUserID, input)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return respondCreated(c, fiber.Map{"slot": slot})
}

func (h *AvailabilityHandler) ListSlots(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var filter repository.SlotListFilter
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	if raw := strings.TrimSpace(c.Query("is_booked")); raw != "" {
		booked := raw == "true"
		filter.IsBooked = &booked
	}

	slots, err := h.service.ListSlots(c.Context(), tutorUserID, filter)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return respondOK(c, fiber.Map{"slots": slots})
}

func (h *AvailabilityHandler) GetSlot(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	slotID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid slot id")
	}

	slot, err := h.service.GetSlot(c.Context(), tutorUserID, slotID)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return respondOK(c, fiber.Map{"slot": slot})
}

type updateSlotRequest struct {
	SlotDate   *string         `json:"slot_date"`
	StartTime  *string         `json:"start_time"`
	EndTime    *string         `json:"end_time"`
	Recurrence json.RawMessage `json:"recurrence"`
	ValidFrom  json.RawMessage `json:"valid_from"`
	ValidUntil json.RawMessage `json:"valid_until"`
}

func (h *AvailabilityHandler) UpdateSlot(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	slotID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid slot id")
	}

	var req updateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var input services.UpdateSlotInput
	if req.SlotDate != nil {
		date, err := time.Parse(dateLayout, *req.SlotDate)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "slot_date must be YYYY-MM-DD")
		}
		input.SlotDate = repository.Set(date)
	}
	if req.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "start_time must be a valid RFC3339 timestamp")
		}
		input.StartTime = repository.Set(start.UTC())
	}
	if req.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "end_time must be a valid RFC3339 timestamp")
		}
		input.EndTime = repository.Set(end.UTC())
	}
	if input.Recurrence, err = optionalString(req.Recurrence); err != nil {
		return respondError(c, fiber.StatusBadRequest, "recurrence must be a string or null")
	}
	if input.ValidFrom, err = optionalTime(req.ValidFrom, dateLayout); err != nil {
		return respondError(c, fiber.StatusBadRequest, "valid_from must be YYYY-MM-DD or null")
	}
	if input.ValidUntil, err = optionalTime(req.ValidUntil, dateLayout); err != nil {
		return respondError(c, fiber.StatusBadRequest, "valid_until must be YYYY-MM-DD or null")
	}

	slot, err := h.service.UpdateSlot(c.Context(), tutorUserID, slotID, input)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return respondOK(c, fiber.Map{"slot": slot})
}

func (h *AvailabilityHandler) DeleteSlot(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	slotID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid slot id")
	}

	if err := h.service.DeleteSlot(c.Context(), tutorUserID, slotID); err != nil {
		return mapAvailabilityError(c, err)
	}
	return respondMessage(c, "Slot deleted")
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRange):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOverlap):
		return respondError(c, fiber.StatusConflict, "Slot overlaps an existing slot")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Slot not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process availability request")
	}
}
