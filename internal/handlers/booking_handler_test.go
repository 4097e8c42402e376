package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type stubBookingService struct {
	createResult *models.Booking
	createErr    error
	updateResult *models.Booking
	updateErr    error
	cancelResult *models.Booking
	cancelErr    error
	listResult   []models.Booking
	listTotal    int
	listErr      error
	getResult    *models.Booking
	getErr       error
	statsResult  *models.BookingStats
	statsErr     error

	lastUserID      int64
	lastBookingID   int64
	lastCreateInput services.CreateBookingInput
	lastUpdateInput services.UpdateBookingStatusInput
	lastListFilter  repository.BookingListFilter
}

func (s *stubBookingService) CreateBooking(_ context.Context, studentUserID int64, input services.CreateBookingInput) (*models.Booking, error) {
	s.lastUserID = studentUserID
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) UpdateStatus(_ context.Context, tutorUserID, bookingID int64, input services.UpdateBookingStatusInput) (*models.Booking, error) {
	s.lastUserID = tutorUserID
	s.lastBookingID = bookingID
	s.lastUpdateInput = input
	return s.updateResult, s.updateErr
}

func (s *stubBookingService) CancelBooking(_ context.Context, studentUserID, bookingID int64) (*models.Booking, error) {
	s.lastUserID = studentUserID
	s.lastBookingID = bookingID
	return s.cancelResult, s.cancelErr
}

func (s *stubBookingService) ListForTutor(_ context.Context, tutorUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error) {
	s.lastUserID = tutorUserID
	s.lastListFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubBookingService) ListForStudent(_ context.Context, studentUserID int64, filter repository.BookingListFilter) ([]models.Booking, int, error) {
	s.lastUserID = studentUserID
	s.lastListFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubBookingService) GetForTutor(_ context.Context, tutorUserID, bookingID int64) (*models.Booking, error) {
	s.lastUserID = tutorUserID
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) Stats(_ context.Context, tutorUserID int64) (*models.BookingStats, error) {
	s.lastUserID = tutorUserID
	return s.statsResult, s.statsErr
}

func newBookingTestApp(service *stubBookingService, userID string) *fiber.App {
	handler := &BookingHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/students/bookings", handler.CreateBooking)
	app.Get("/api/v1/students/bookings", handler.ListStudentBookings)
	app.Post("/api/v1/students/bookings/:id/cancel", handler.CancelBooking)
	app.Get("/api/v1/tutors/bookings", handler.ListTutorBookings)
	app.Put("/api/v1/tutors/bookings/:id/status", handler.UpdateBookingStatus)
	return app
}

func TestCreateBookingReturnsCreated(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.Booking{ID: 91, Status: models.BookingPending, DurationMinutes: 60},
	}
	app := newBookingTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/bookings", strings.NewReader(`{
		"tutor_profile_id": 7,
		"availability_slot_id": 13,
		"category_id": 3,
		"notes": "algebra homework help"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user id 42, got %d", service.lastUserID)
	}
	if service.lastCreateInput.TutorProfileID != 7 || service.lastCreateInput.AvailabilitySlotID != 13 {
		t.Fatalf("unexpected create input: %+v", service.lastCreateInput)
	}
	if service.lastCreateInput.Notes == nil || *service.lastCreateInput.Notes != "algebra homework help" {
		t.Fatalf("expected notes to pass through, got %v", service.lastCreateInput.Notes)
	}
}

func TestCreateBookingRejectsMissingFields(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/bookings", strings.NewReader(`{"tutor_profile_id": 7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingMapsConflicts(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"already booked", services.ErrAlreadyBooked, http.StatusConflict},
		{"slot mismatch", services.ErrSlotMismatch, http.StatusConflict},
		{"past slot", services.ErrPastSlot, http.StatusBadRequest},
		{"missing slot", pgx.ErrNoRows, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubBookingService{createErr: tc.err}
			app := newBookingTestApp(service, "42")

			req := httptest.NewRequest(http.MethodPost, "/api/v1/students/bookings", strings.NewReader(`{
				"tutor_profile_id": 7,
				"availability_slot_id": 13,
				"category_id": 3
			}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestUpdateBookingStatusMapsInvalidTransition(t *testing.T) {
	service := &stubBookingService{
		updateErr: &services.InvalidTransitionError{From: models.BookingCompleted, To: models.BookingConfirmed},
	}
	app := newBookingTestApp(service, "7")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tutors/bookings/91/status", strings.NewReader(`{"status": "CONFIRMED"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastBookingID != 91 {
		t.Fatalf("expected booking id 91, got %d", service.lastBookingID)
	}
	if service.lastUpdateInput.Status != "CONFIRMED" {
		t.Fatalf("expected status CONFIRMED, got %q", service.lastUpdateInput.Status)
	}
}

func TestCancelBookingMapsTerminalStates(t *testing.T) {
	service := &stubBookingService{cancelErr: services.ErrAlreadyCompleted}
	app := newBookingTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/bookings/5/cancel", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestListStudentBookingsPaginates(t *testing.T) {
	service := &stubBookingService{
		listResult: []models.Booking{{ID: 1}, {ID: 2}},
		listTotal:  12,
	}
	app := newBookingTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/bookings?page=2&limit=5&status=pending", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastListFilter.Limit != 5 || service.lastListFilter.Offset != 5 {
		t.Fatalf("unexpected paging in filter: %+v", service.lastListFilter)
	}
	if service.lastListFilter.Status != "PENDING" {
		t.Fatalf("expected status filter PENDING, got %q", service.lastListFilter.Status)
	}

	var body struct {
		Success    bool                  `json:"success"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success response")
	}
	if body.Pagination.Total != 12 || body.Pagination.TotalPages != 3 || body.Pagination.Page != 2 {
		t.Fatalf("unexpected pagination: %+v", body.Pagination)
	}
}
