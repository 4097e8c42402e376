package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/config"
	"github.com/arman-d/TutorAppBack/internal/handlers"
	"github.com/arman-d/TutorAppBack/internal/middleware"
	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	studentProfileRepo := repository.NewStudentProfileRepository(db)
	tutorProfileRepo := repository.NewTutorProfileRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	ratingService := services.NewRatingService()
	profileService := services.NewProfileService(db, userRepo, studentProfileRepo, tutorProfileRepo, categoryRepo)
	availabilityService := services.NewAvailabilityService(db, availabilityRepo, tutorProfileRepo)
	bookingService := services.NewBookingService(db, bookingRepo, tutorProfileRepo, studentProfileRepo)
	reviewService := services.NewReviewService(db, reviewRepo, studentProfileRepo, tutorProfileRepo, ratingService)
	categoryService := services.NewCategoryService(categoryRepo, tutorProfileRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	dashboardService := services.NewDashboardService(bookingRepo, studentProfileRepo, tutorProfileRepo, notificationRepo)
	adminService := services.NewAdminService(db, userRepo, tutorProfileRepo, reviewRepo, statsRepo, ratingService)

	authHandler := handlers.NewAuthHandler(db, userRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	adminHandler := handlers.NewAdminHandler(adminService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Public discovery endpoints.
	v1 := api.Group("/v1")
	v1.Get("/tutors", profileHandler.ListTutors)
	v1.Get("/tutors/:id<int>", profileHandler.GetTutor)
	v1.Get("/categories", categoryHandler.ListCategories)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	students := authProtected.Group("/students", middleware.RequireRole(models.RoleStudent))
	students.Get("/profile", profileHandler.GetStudentProfile)
	students.Put("/profile", profileHandler.UpdateStudentProfile)
	students.Post("/upgrade-to-tutor", profileHandler.UpgradeToTutor)
	students.Post("/bookings", bookingHandler.CreateBooking)
	students.Get("/bookings", bookingHandler.ListStudentBookings)
	students.Post("/bookings/:id/cancel", bookingHandler.CancelBooking)
	students.Post("/reviews", reviewHandler.CreateReview)
	students.Get("/reviews", reviewHandler.ListStudentReviews)
	students.Get("/reviews/:id", reviewHandler.GetReview)
	students.Put("/reviews/:id", reviewHandler.UpdateReview)
	students.Delete("/reviews/:id", reviewHandler.DeleteReview)

	tutors := authProtected.Group("/tutors", middleware.RequireRole(models.RoleTutor))
	tutors.Get("/profile", profileHandler.GetTutorProfile)
	tutors.Put("/profile", profileHandler.UpdateTutorProfile)
	tutors.Post("/availability", availabilityHandler.CreateSlot)
	tutors.Get("/availability", availabilityHandler.ListSlots)
	tutors.Get("/availability/:id", availabilityHandler.GetSlot)
	tutors.Put("/availability/:id", availabilityHandler.UpdateSlot)
	tutors.Delete("/availability/:id", availabilityHandler.DeleteSlot)
	tutors.Get("/bookings", bookingHandler.ListTutorBookings)
	tutors.Get("/bookings/stats", bookingHandler.TutorStats)
	tutors.Get("/bookings/:id", bookingHandler.GetTutorBooking)
	tutors.Put("/bookings/:id/status", bookingHandler.UpdateBookingStatus)
	tutors.Get("/reviews", reviewHandler.ListTutorReviews)
	tutors.Get("/categories", categoryHandler.ListTutorCategories)
	tutors.Post("/categories", categoryHandler.AssignCategory)
	tutors.Delete("/categories/:categoryId", categoryHandler.UnassignCategory)

	notifications := authProtected.Group("/notifications")
	notifications.Get("", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	authProtected.Get("/dashboard", dashboardHandler.GetDashboard)

	admin := authProtected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/active", adminHandler.SetUserActive)
	admin.Patch("/tutors/:id/verify", adminHandler.VerifyTutor)
	admin.Delete("/reviews/:id", adminHandler.DeleteReview)
	admin.Get("/stats", adminHandler.PlatformStats)
	admin.Post("/categories", categoryHandler.CreateCategory)
	admin.Put("/categories/:id", categoryHandler.UpdateCategory)
	admin.Delete("/categories/:id", categoryHandler.DeleteCategory)
}
