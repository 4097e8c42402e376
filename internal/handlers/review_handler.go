package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type reviewApplicationService interface {
	CreateReview(ctx context.Context, studentUserID int64, input services.CreateReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, studentUserID, reviewID int64, input services.UpdateReviewInput) (*models.Review, error)
	DeleteReview(ctx context.Context, studentUserID, reviewID int64) error
	GetForStudent(ctx context.Context, studentUserID, reviewID int64) (*models.Review, error)
	ListForStudent(ctx context.Context, studentUserID int64, limit, offset int) ([]models.Review, int, error)
	ListForTutor(ctx context.Context, tutorUserID int64, limit, offset int) ([]models.Review, int, error)
}

type ReviewHandler struct {
	service reviewApplicationService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	BookingID int64   `json:"booking_id" validate:"required,gt=0"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment"`
}

func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "booking_id and a rating between 1 and 5 are required")
	}

	review, err := h.service.CreateReview(c.Context(), studentUserID, services.CreateReviewInput{
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return mapReviewError(c, err)
	}
	return respondCreated(c, fiber.Map{"review": review})
}

func (h *ReviewHandler) GetReview(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid review id")
	}

	review, err := h.service.GetForStudent(c.Context(), studentUserID, reviewID)
	if err != nil {
		return mapReviewError(c, err)
	}
	return respondOK(c, fiber.Map{"review": review})
}

type updateReviewRequest struct {
	Rating  json.RawMessage `json:"rating"`
	Comment json.RawMessage `json:"comment"`
}

func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid review id")
	}

	var req updateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var input services.UpdateReviewInput
	if input.Rating, err = optionalInt(req.Rating); err != nil {
		return respondError(c, fiber.StatusBadRequest, "rating must be an integer")
	}
	if input.Rating.IsSet() && input.Rating.Pointer() == nil {
		return respondError(c, fiber.StatusBadRequest, "rating cannot be null")
	}
	if input.Comment, err = optionalString(req.Comment); err != nil {
		return respondError(c, fiber.StatusBadRequest, "comment must be a string or null")
	}

	review, err := h.service.UpdateReview(c.Context(), studentUserID, reviewID, input)
	if err != nil {
		return mapReviewError(c, err)
	}
	return respondOK(c, fiber.Map{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid review id")
	}

	if err := h.service.DeleteReview(c.Context(), studentUserID, reviewID); err != nil {
		return mapReviewError(c, err)
	}
	return respondMessage(c, "Review deleted")
}

func (h *ReviewHandler) ListStudentReviews(c *fiber.Ctx) error {
	studentUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	page := parsePaging(c)
	reviews, total, err := h.service.ListForStudent(c.Context(), studentUserID, page.Limit, page.Offset)
	if err != nil {
		return mapReviewError(c, err)
	}
	return respondPage(c, fiber.Map{"reviews": reviews}, buildPaginationMeta(page.Page, page.Limit, total))
}

func (h *ReviewHandler) ListTutorReviews(c *fiber.Ctx) error {
	tutorUserID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	page := parsePaging(c)
	reviews, total, err := h.service.ListForTutor(c.Context(), tutorUserID, page.Limit, page.Offset)
	if err != nil {
		return mapReviewError(c, err)
	}
	return respondPage(c, fiber.Map{"reviews": reviews}, buildPaginationMeta(page.Page, page.Limit, total))
}

func mapReviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "Booking belongs to another student")
	case errors.Is(err, services.ErrNotCompleted):
		return respondError(c, fiber.StatusUnprocessableEntity, "Only completed bookings can be reviewed")
	case errors.Is(err, services.ErrDuplicateReview):
		return respondError(c, fiber.StatusConflict, "Booking already has a review")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process review request")
	}
}
