package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/arman-d/TutorAppBack/internal/models"
)

// Every response uses the same envelope: {success, message?, data?, pagination?}.

func respondOK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func respondPage(c *fiber.Ctx, data any, meta models.PaginationMeta) error {
	return c.JSON(fiber.Map{"success": true, "data": data, "pagination": meta})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": true, "message": message})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// parseAuthUserID reads the identity set by middleware.AuthRequired.
func parseAuthUserID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return userID, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
