package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

type StudentDashboard struct {
	Profile             *models.StudentProfile `json:"profile"`
	UpcomingBookings    []models.Booking       `json:"upcoming_bookings"`
	TotalBookings       int                    `json:"total_bookings"`
	UnreadNotifications int                    `json:"unread_notifications"`
}

type TutorDashboard struct {
	Profile             *models.TutorProfile `json:"profile"`
	UpcomingBookings    []models.Booking     `json:"upcoming_bookings"`
	Stats               *models.BookingStats `json:"stats"`
	UnreadNotifications int                  `json:"unread_notifications"`
}

// DashboardService assembles per-role aggregate reads. All reads are
// side-effect-free.
type DashboardService struct {
	bookingRepo        *repository.BookingRepository
	studentProfileRepo studentProfileReader
	tutorProfileRepo   tutorProfileReader
	notificationRepo   *repository.NotificationRepository
	now                func() time.Time
}

func NewDashboardService(
	bookingRepo *repository.BookingRepository,
	studentProfileRepo studentProfileReader,
	tutorProfileRepo tutorProfileReader,
	notificationRepo *repository.NotificationRepository,
) *DashboardService {
	return &DashboardService{
		bookingRepo:        bookingRepo,
		studentProfileRepo: studentProfileRepo,
		tutorProfileRepo:   tutorProfileRepo,
		notificationRepo:   notificationRepo,
		now:                time.Now,
	}
}

func (s *DashboardService) ForStudent(ctx context.Context, userID int64) (*StudentDashboard, error) {
	profile, err := s.studentProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().Truncate(24 * time.Hour)
	upcoming, total, err := s.bookingRepo.List(ctx, repository.BookingListFilter{
		StudentProfileID: profile.ID,
		DateFrom:         &today,
		Limit:            5,
	})
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StudentDashboard{
		Profile:             profile,
		UpcomingBookings:    upcoming,
		TotalBookings:       total,
		UnreadNotifications: unread,
	}, nil
}

func (s *DashboardService) ForTutor(ctx context.Context, userID int64) (*TutorDashboard, error) {
	profile, err := s.tutorProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().Truncate(24 * time.Hour)
	upcoming, _, err := s.bookingRepo.List(ctx, repository.BookingListFilter{
		TutorProfileID: profile.ID,
		DateFrom:       &today,
		Limit:          5,
	})
	if err != nil {
		return nil, err
	}
	stats, err := s.bookingRepo.StatsForTutor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = completionRate(stats.Completed, stats.Total)
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TutorDashboard{
		Profile:             profile,
		UpcomingBookings:    upcoming,
		Stats:               stats,
		UnreadNotifications: unread,
	}, nil
}

// For routes any authenticated role may hit: tutors get the tutor view,
// everyone else the student view.
func (s *DashboardService) For(ctx context.Context, userID int64, role models.Role) (any, error) {
	if role == models.RoleTutor {
		dashboard, err := s.ForTutor(ctx, userID)
		if err == nil || !errors.Is(err, pgx.ErrNoRows) {
			return dashboard, err
		}
	}
	return s.ForStudent(ctx, userID)
}
