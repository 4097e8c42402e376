package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestParsePaging(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 10, 0},
		{"explicit", "page=3&limit=20", 3, 20, 40},
		{"zero page clamps to one", "page=0", 1, 10, 0},
		{"negative limit falls back", "limit=-5", 1, 10, 0},
		{"limit capped", "limit=500", 1, 50, 0},
		{"garbage ignored", "page=abc&limit=xyz", 1, 10, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got paging
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePaging(c)
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()

			if got.Page != tc.wantPage || got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
				t.Fatalf("got %+v, want page=%d limit=%d offset=%d", got, tc.wantPage, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := buildPaginationMeta(2, 10, 25)
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.TotalPages)
	}
	if meta.Page != 2 || meta.Limit != 10 || meta.Total != 25 {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	empty := buildPaginationMeta(1, 10, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 pages for empty result, got %d", empty.TotalPages)
	}
}
