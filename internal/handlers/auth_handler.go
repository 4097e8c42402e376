package handlers

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
	"github.com/arman-d/TutorAppBack/pkg/utils"
)

type AuthHandler struct {
	db        *pgxpool.Pool
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewAuthHandler(db *pgxpool.Pool, userRepo *repository.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{db: db, userRepo: userRepo, jwtSecret: jwtSecret}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid registration payload")
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid email format")
	}
	req.Email = strings.ToLower(parsedEmail.Address)

	role, err := models.ParseRole(req.Role)
	if err != nil || role == models.RoleAdmin {
		return respondError(c, fiber.StatusBadRequest, "Invalid role")
	}

	existing, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err == nil && existing != nil {
		return respondError(c, fiber.StatusConflict, "Email already exists")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return respondError(c, fiber.StatusInternalServerError, "Failed to check email")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	}

	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to start registration transaction")
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	txUserRepo := repository.NewUserRepository(tx)
	txStudentProfileRepo := repository.NewStudentProfileRepository(tx)
	txTutorProfileRepo := repository.NewTutorProfileRepository(tx)

	if err := txUserRepo.CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repository.UniqueViolation {
			return respondError(c, fiber.StatusConflict, "Email already exists")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	if role == models.RoleStudent {
		if err := txStudentProfileRepo.CreateEmpty(c.Context(), user.ID); err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to create student profile")
		}
	} else {
		if _, err := txTutorProfileRepo.Create(c.Context(), repository.CreateTutorProfileInput{UserID: user.ID}); err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to create tutor profile")
		}
	}

	if err := tx.Commit(c.Context()); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to finalize registration")
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), user.Role.String(), h.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return respondCreated(c, fiber.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userRepo.GetByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to look up user")
	}
	if !user.IsActive {
		return respondError(c, fiber.StatusForbidden, "Account is deactivated")
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), user.Role.String(), h.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return respondOK(c, fiber.Map{"user": user, "token": token})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	return respondOK(c, fiber.Map{"user": user})
}
