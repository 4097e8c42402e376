package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arman-d/TutorAppBack/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

type paging struct {
	Page   int
	Limit  int
	Offset int
}

// parsePaging reads ?page= and ?limit= with 1-based page defaulting to 1.
func parsePaging(c *fiber.Ctx) paging {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit", strconv.Itoa(defaultPageLimit))))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return paging{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
