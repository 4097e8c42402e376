package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

type stubAvailabilityService struct {
	createResult *models.AvailabilitySlot
	createErr    error
	listResult   []models.AvailabilitySlot
	listErr      error
	getResult    *models.AvailabilitySlot
	getErr       error
	updateResult *models.AvailabilitySlot
	updateErr    error
	deleteErr    error

	lastUserID      int64
	lastSlotID      int64
	lastCreateInput services.CreateSlotInput
	lastUpdateInput services.UpdateSlotInput
	lastFilter      repository.SlotListFilter
}

func (s *stubAvailabilityService) CreateSlot(_ context.Context, tutorUserID int64, input services.CreateSlotInput) (*models.AvailabilitySlot, error) {
	s.lastUserID = tutorUserID
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubAvailabilityService) ListSlots(_ context.Context, tutorUserID int64, filter repository.SlotListFilter) ([]models.AvailabilitySlot, error) {
	s.lastUserID = tutorUserID
	s.lastFilter = filter
	return s.listResult, s.listErr
}

func (s *stubAvailabilityService) GetSlot(_ context.Context, tutorUserID, slotID int64) (*models.AvailabilitySlot, error) {
	s.lastUserID = tutorUserID
	s.lastSlotID = slotID
	return s.getResult, s.getErr
}

func (s *stubAvailabilityService) UpdateSlot(_ context.Context, tutorUserID, slotID int64, input services.UpdateSlotInput) (*models.AvailabilitySlot, error) {
	s.lastUserID = tutorUserID
	s.lastSlotID = slotID
	s.lastUpdateInput = input
	return s.updateResult, s.updateErr
}

func (s *stubAvailabilityService) DeleteSlot(_ context.Context, tutorUserID, slotID int64) error {
	s.lastUserID = tutorUserID
	s.lastSlotID = slotID
	return s.deleteErr
}

func newAvailabilityTestApp(service *stubAvailabilityService) *fiber.App {
	handler := &AvailabilityHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		return c.Next()
	})
	app.Post("/api/v1/tutors/availability", handler.CreateSlot)
	app.Get("/api/v1/tutors/availability", handler.ListSlots)
	app.Put("/api/v1/tutors/availability/:id", handler.UpdateSlot)
	app.Delete("/api/v1/tutors/availability/:id", handler.DeleteSlot)
	return app
}

func TestCreateSlotParsesTimes(t *testing.T) {
	service := &stubAvailabilityService{
		createResult: &models.AvailabilitySlot{ID: 11},
	}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"slot_date": "2030-03-15",
		"start_time": "2030-03-15T09:00:00Z",
		"end_time": "2030-03-15T10:00:00Z",
		"recurrence": "weekly"
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
	if service.lastUserID != 7 {
		t.Fatalf("expected tutor user id 7, got %d", service.lastUserID)
	}
	wantStart := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	if !service.lastCreateInput.StartTime.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, service.lastCreateInput.StartTime)
	}
	if service.lastCreateInput.Recurrence == nil || *service.lastCreateInput.Recurrence != "weekly" {
		t.Fatalf("expected recurrence weekly, got %v", service.lastCreateInput.Recurrence)
	}
}

func TestCreateSlotRejectsBadDate(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"slot_date": "15/03/2030",
		"start_time": "2030-03-15T09:00:00Z",
		"end_time": "2030-03-15T10:00:00Z"
	}`))
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

func TestCreateSlotMapsOverlap(t *testing.T) {
	service := &stubAvailabilityService{createErr: services.ErrOverlap}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"slot_date": "2030-03-15",
		"start_time": "2030-03-15T09:00:00Z",
		"end_time": "2030-03-15T10:00:00Z"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUpdateSlotDistinguishesAbsentAndNull(t *testing.T) {
	service := &stubAvailabilityService{
		updateResult: &models.AvailabilitySlot{ID: 11},
	}
	app := newAvailabilityTestApp(service)

	// recurrence: null clears, valid_from absent stays untouched.
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tutors/availability/11", strings.NewReader(`{
		"start_time": "2030-03-15T11:00:00Z",
		"recurrence": null
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	input := service.lastUpdateInput
	if !input.StartTime.IsSet() {
		t.Fatal("expected start_time to be set")
	}
	if !input.Recurrence.IsSet() || input.Recurrence.Pointer() != nil {
		t.Fatal("expected recurrence to be cleared")
	}
	if input.ValidFrom.IsSet() {
		t.Fatal("expected valid_from to be untouched")
	}
	if input.SlotDate.IsSet() || input.EndTime.IsSet() {
		t.Fatal("expected untouched fields to stay unset")
	}
}

func TestDeleteSlotMapsMissing(t *testing.T) {
	service := &stubAvailabilityService{deleteErr: pgx.ErrNoRows}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tutors/availability/99", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastSlotID != 99 {
		t.Fatalf("expected slot id 99, got %d", service.lastSlotID)
	}
}

func TestListSlotsParsesFilter(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tutors/availability?date_from=2030-03-01&is_booked=false", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.DateFrom == nil || service.lastFilter.DateFrom.Day() != 1 {
		t.Fatalf("expected date_from filter, got %+v", service.lastFilter)
	}
	if service.lastFilter.IsBooked == nil || *service.lastFilter.IsBooked {
		t.Fatalf("expected is_booked=false filter, got %+v", service.lastFilter)
	}
}
