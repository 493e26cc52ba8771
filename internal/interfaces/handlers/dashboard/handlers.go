package dashboard

import (
	dashsvc "swarna-backend/internal/application/dashboard"
	"swarna-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *dashsvc.Service
}

// GET /api/v1/dashboard/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	summary, err := h.Service.GetSummary(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Dashboard summary fetched successfully", summary, nil)
}
