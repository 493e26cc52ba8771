package banks

import (
	"errors"

	banksvc "swarna-backend/internal/application/banks"
	"swarna-backend/internal/pkg/response"
	"swarna-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *banksvc.Service
}

// GET /api/v1/banks/list-banks
func (h *Handlers) ListBanks(c *fiber.Ctx) error {
	banks, err := h.Service.ListBanks(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Banks fetched successfully", banks, nil)
}

type createBankBody struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Branch string `json:"branch"`
}

// POST /api/v1/banks/create-bank
func (h *Handlers) CreateBank(c *fiber.Ctx) error {
	var body createBankBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if body.Name == "" || body.Branch == "" {
		return response.Error(c, "Name and branch are required", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidBankCode(body.Code) {
		return response.Error(c, "Invalid bank code", fiber.StatusBadRequest, nil)
	}

	bank, err := h.Service.CreateBank(c.Context(), banksvc.CreateBankInput{
		Name:   body.Name,
		Code:   body.Code,
		Branch: body.Branch,
	})
	if err != nil {
		if errors.Is(err, banksvc.ErrCodeTaken) {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Bank created successfully", bank, nil)
}
