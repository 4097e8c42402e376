package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestBookingFlowClaimsSlotAndNotifiesTutor(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	slot := env.createSlot(t, ctx, time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC), 60)

	booking, err := env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.Status != models.BookingPending {
		t.Fatalf("expected PENDING booking, got %s", booking.Status)
	}
	if booking.DurationMinutes != 60 {
		t.Fatalf("expected 60 minute booking, got %d", booking.DurationMinutes)
	}
	if booking.Amount != 80 {
		t.Fatalf("expected amount 80 for a one hour slot at rate 80, got %.2f", booking.Amount)
	}

	claimed, err := repository.NewAvailabilityRepository(pool).GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetByID slot: %v", err)
	}
	if !claimed.IsBooked {
		t.Fatal("expected slot to be marked booked")
	}

	_, err = env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	})
	if err != ErrAlreadyBooked {
		t.Fatalf("expected ErrAlreadyBooked on double booking, got %v", err)
	}

	notifications, _, err := repository.NewNotificationRepository(pool).ListByUser(ctx, env.tutorUserID, true, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser notifications: %v", err)
	}
	if len(notifications) == 0 {
		t.Fatal("expected tutor to be notified of the booking")
	}
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	slot := env.createSlot(t, ctx, time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC), 90)
	booking, err := env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	cancelled, err := env.bookingService.CancelBooking(ctx, env.studentUserID, booking.ID)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	released, err := repository.NewAvailabilityRepository(pool).GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetByID slot: %v", err)
	}
	if released.IsBooked {
		t.Fatal("expected slot to be released after cancellation")
	}

	if _, err := env.bookingService.CancelBooking(ctx, env.studentUserID, booking.ID); err != ErrAlreadyCancelled {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCompletedBookingReviewRecomputesRating(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	slot := env.createSlot(t, ctx, time.Date(2030, 5, 10, 8, 0, 0, 0, time.UTC), 60)
	booking, err := env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if _, err := env.bookingService.UpdateStatus(ctx, env.tutorUserID, booking.ID, UpdateBookingStatusInput{Status: "CONFIRMED"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := env.bookingService.UpdateStatus(ctx, env.tutorUserID, booking.ID, UpdateBookingStatusInput{Status: "COMPLETED"}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	review, err := env.reviewService.CreateReview(ctx, env.studentUserID, CreateReviewInput{
		BookingID: booking.ID,
		Rating:    4,
	})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	tutor, err := repository.NewTutorProfileRepository(pool).GetByID(ctx, env.tutorProfileID)
	if err != nil {
		t.Fatalf("GetByID tutor: %v", err)
	}
	if tutor.TotalReviews != 1 || tutor.Rating != 4 {
		t.Fatalf("expected rating 4.0 over 1 review, got %.2f over %d", tutor.Rating, tutor.TotalReviews)
	}
	if tutor.CompletedSessions != 1 {
		t.Fatalf("expected 1 completed session, got %d", tutor.CompletedSessions)
	}

	if _, err := env.reviewService.CreateReview(ctx, env.studentUserID, CreateReviewInput{
		BookingID: booking.ID,
		Rating:    5,
	}); err != ErrDuplicateReview {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}

	if err := env.reviewService.DeleteReview(ctx, env.studentUserID, review.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	tutor, err = repository.NewTutorProfileRepository(pool).GetByID(ctx, env.tutorProfileID)
	if err != nil {
		t.Fatalf("GetByID tutor: %v", err)
	}
	if tutor.TotalReviews != 0 || tutor.Rating != 0 {
		t.Fatalf("expected rating reset after delete, got %.2f over %d", tutor.Rating, tutor.TotalReviews)
	}
}

func TestOverlappingSlotRejected(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	start := time.Date(2030, 6, 2, 10, 0, 0, 0, time.UTC)
	env.createSlot(t, ctx, start, 60)

	_, err := env.availabilityService.CreateSlot(ctx, env.tutorUserID, CreateSlotInput{
		SlotDate:  start,
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
	})
	if err != ErrOverlap {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}

	// Adjacent slot sharing a boundary is fine.
	if _, err := env.availabilityService.CreateSlot(ctx, env.tutorUserID, CreateSlotInput{
		SlotDate:  start,
		StartTime: start.Add(60 * time.Minute),
		EndTime:   start.Add(120 * time.Minute),
	}); err != nil {
		t.Fatalf("expected adjacent slot to be accepted, got %v", err)
	}
}

func TestBookedSlotCannotBeUpdatedOrDeleted(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	start := time.Date(2030, 7, 8, 14, 0, 0, 0, time.UTC)
	slot := env.createSlot(t, ctx, start, 60)
	if _, err := env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err := env.availabilityService.UpdateSlot(ctx, env.tutorUserID, slot.ID, UpdateSlotInput{
		EndTime: repository.Set(start.Add(2 * time.Hour)),
	})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows updating a booked slot, got %v", err)
	}
	if err := env.availabilityService.DeleteSlot(ctx, env.tutorUserID, slot.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows deleting a booked slot, got %v", err)
	}

	kept, err := repository.NewAvailabilityRepository(pool).GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetByID slot: %v", err)
	}
	if !kept.IsBooked {
		t.Fatal("expected slot to stay booked")
	}
	if !kept.EndTime.Equal(slot.EndTime) {
		t.Fatalf("expected end time unchanged at %v, got %v", slot.EndTime, kept.EndTime)
	}
}

func TestTutorCancellationAppendsNotes(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	env := newIntegrationEnv(t, ctx, pool)

	slot := env.createSlot(t, ctx, time.Date(2030, 8, 20, 16, 0, 0, 0, time.UTC), 60)
	booking, err := env.bookingService.CreateBooking(ctx, env.studentUserID, CreateBookingInput{
		TutorProfileID:     env.tutorProfileID,
		AvailabilitySlotID: slot.ID,
		CategoryID:         env.categoryID,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	reason := "student asked to move the session"
	cancelled, err := env.bookingService.UpdateStatus(ctx, env.tutorUserID, booking.ID, UpdateBookingStatusInput{
		Status: "CANCELLED",
		Notes:  &reason,
	})
	if err != nil {
		t.Fatalf("UpdateStatus cancel: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	stored, err := repository.NewBookingRepository(pool).GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID booking: %v", err)
	}
	if stored.Notes == nil {
		t.Fatal("expected cancellation notes to be recorded")
	}
	if !strings.Contains(*stored.Notes, "Cancelled by tutor") {
		t.Fatalf("expected audit line in notes, got %q", *stored.Notes)
	}
	if !strings.Contains(*stored.Notes, reason) {
		t.Fatalf("expected tutor notes %q in %q", reason, *stored.Notes)
	}
}

type integrationEnv struct {
	studentUserID       int64
	tutorUserID         int64
	tutorProfileID      int64
	categoryID          int64
	availabilityService *AvailabilityService
	bookingService      *BookingService
	reviewService       *ReviewService
}

func newIntegrationEnv(t *testing.T, ctx context.Context, pool *pgxpool.Pool) *integrationEnv {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	studentProfileRepo := repository.NewStudentProfileRepository(pool)
	tutorProfileRepo := repository.NewTutorProfileRepository(pool)

	suffix := time.Now().UnixNano()

	student := &models.User{
		Email:        fmt.Sprintf("booking-test-student-%d@example.com", suffix),
		PasswordHash: "test-hash",
		Name:         "Test Student",
		Role:         models.RoleStudent,
	}
	if err := userRepo.CreateUser(ctx, student); err != nil {
		t.Fatalf("CreateUser student: %v", err)
	}
	if err := studentProfileRepo.CreateEmpty(ctx, student.ID); err != nil {
		t.Fatalf("CreateEmpty student profile: %v", err)
	}

	tutor := &models.User{
		Email:        fmt.Sprintf("booking-test-tutor-%d@example.com", suffix),
		PasswordHash: "test-hash",
		Name:         "Test Tutor",
		Role:         models.RoleTutor,
	}
	if err := userRepo.CreateUser(ctx, tutor); err != nil {
		t.Fatalf("CreateUser tutor: %v", err)
	}
	tutorProfile, err := tutorProfileRepo.Create(ctx, repository.CreateTutorProfileInput{
		UserID:     tutor.ID,
		HourlyRate: 80,
	})
	if err != nil {
		t.Fatalf("Create tutor profile: %v", err)
	}

	category, err := repository.NewCategoryRepository(pool).Create(ctx,
		fmt.Sprintf("booking-test-category-%d", suffix), nil)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DELETE FROM bookings WHERE tutor_profile_id = $1", tutorProfile.ID)
		_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", []int64{student.ID, tutor.ID})
		_, _ = pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", category.ID)
	})

	return &integrationEnv{
		studentUserID:       student.ID,
		tutorUserID:         tutor.ID,
		tutorProfileID:      tutorProfile.ID,
		categoryID:          category.ID,
		availabilityService: NewAvailabilityService(pool, repository.NewAvailabilityRepository(pool), tutorProfileRepo),
		bookingService:      NewBookingService(pool, repository.NewBookingRepository(pool), tutorProfileRepo, studentProfileRepo),
		reviewService: NewReviewService(pool, repository.NewReviewRepository(pool),
			studentProfileRepo, tutorProfileRepo, NewRatingService()),
	}
}

func (env *integrationEnv) createSlot(t *testing.T, ctx context.Context, start time.Time, minutes int) *models.AvailabilitySlot {
	t.Helper()
	slot, err := env.availabilityService.CreateSlot(ctx, env.tutorUserID, CreateSlotInput{
		SlotDate:  start,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	return slot
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}
