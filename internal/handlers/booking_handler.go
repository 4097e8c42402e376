package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, studentUserID int64, input services.CreateBookingInput) (*models.Booking, error)
	UpdateStatus(ctx context.Context, tutorUserID, bookingID int64, input services.UpdateBookingStatusInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, studentUserID, bookingID int64) (*models.Booking, error)
	ListForTutor(ctx context.Context, tutorUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error)
	ListForStudent(ctx context.Context, studentUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error)
	GetForTutor(ctx context.Context, tutorUserID, bookingID int64) (*models.Booking, error)
	Stats(ctx context.Context, tutorUserID int64) (*models.BookingStats, error)
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	TutorProfileID     int64   `json:"tutor_profile_id" validate:"required,gt=0"`
	AvailabilitySlotID int64   `json:"availability_slot_id" validate:"required,gt=0"`
	CategoryID         int64   `json:"category_id" validate:"required,gt=0"`
	Notes              *string `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "tutor_profile_id, availability_slot_id and category_id are required")
	}

	booking, err := h.service.CreateBooking(c.Context(), studentUserID, services.CreateBookingInput{
		TutorProfileID:     req.TutorProfileID,
		AvailabilitySlotID: req.AvailabilitySlotID,
		CategoryID:         req.CategoryID,
		Notes:              req.Notes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondCreated(c, fiber.Map{"booking": booking})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	booking, err := h.service.CancelBooking(c.Context(), studentUserID, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondOK(c, fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListStudentBookings(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	filter, badParam := parseBookingFilter(c)
	if badParam != "" {
		return respondError(c, fiber.StatusBadRequest, badParam)
	}
	page := parsePaging(c)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	bookings, total, err := h.service.ListForStudent(c.Context(), studentUserID, filter)
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondPage(c, fiber.Map{"bookings": bookings}, buildPaginationMeta(page.Page, page.Limit, total))
}

func (h *BookingHandler) ListTutorBookings(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	filter, badParam := parseBookingFilter(c)
	if badParam != "" {
		return respondError(c, fiber.StatusBadRequest, badParam)
	}
	page := parsePaging(c)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	bookings, total, err := h.service.ListForTutor(c.Context(), tutorUserID, filter)
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondPage(c, fiber.Map{"bookings": bookings}, buildPaginationMeta(page.Page, page.Limit, total))
}

func (h *BookingHandler) GetTutorBooking(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	booking, err := h.service.GetForTutor(c.Context(), tutorUserID, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondOK(c, fiber.Map{"booking": booking})
}

type updateBookingStatusRequest struct {
	Status      string  `json:"status" validate:"required"`
	Notes       *string `json:"notes"`
	MeetingLink *string `json:"meeting_link"`
}

func (h *BookingHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var req updateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "status is required")
	}

	booking, err := h.service.UpdateStatus(c.Context(), tutorUserID, bookingID, services.UpdateBookingStatusInput{
		Status:      req.Status,
		Notes:       req.Notes,
		MeetingLink: req.MeetingLink,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondOK(c, fiber.Map{"booking": booking})
}

func (h *BookingHandler) TutorStats(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	stats, err := h.service.Stats(c.Context(), tutorUserID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return respondOK(c, fiber.Map{"stats": stats})
}

// parseBookingFilter reads the shared ?status/?date_from/?date_to query
// parameters. The second return value names the offending parameter when a
// value does not parse.
func parseBookingFilter(c *fiber.Ctx) (repository.BookingListFilter, string) {
	var filter repository.BookingListFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		filter.Status = strings.ToUpper(raw)
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, "date_from must be YYYY-MM-DD"
		}
		filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, "date_to must be YYYY-MM-DD"
		}
		filter.DateTo = &to
	}
	return filter, ""
}

func mapBookingError(c *fiber.Ctx, err error) error {
	var transitionErr *services.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPastSlot):
		return respondError(c, fiber.StatusBadRequest, "Slot is in the past")
	case errors.Is(err, services.ErrAlreadyBooked):
		return respondError(c, fiber.StatusConflict, "Slot is already booked")
	case errors.Is(err, services.ErrSlotMismatch):
		return respondError(c, fiber.StatusConflict, "Slot does not belong to the requested tutor")
	case errors.Is(err, services.ErrAlreadyCancelled):
		return respondError(c, fiber.StatusUnprocessableEntity, "Booking is already cancelled")
	case errors.Is(err, services.ErrAlreadyCompleted):
		return respondError(c, fiber.StatusUnprocessableEntity, "Booking is already completed")
	case errors.As(err, &transitionErr):
		return respondError(c, fiber.StatusUnprocessableEntity, transitionErr.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process booking request")
	}
}
