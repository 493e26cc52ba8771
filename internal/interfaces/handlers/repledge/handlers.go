package repledge

import (
	"errors"
	"time"

	repsvc "swarna-backend/internal/application/repledge"
	"swarna-backend/internal/domain"
	"swarna-backend/internal/pkg/response"
	"swarna-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *repsvc.Service
}

const dateLayout = "2006-01-02"

// GET /api/v1/repledges/view-repledge/:id (also accepts ?loan_no=)
func (h *Handlers) ViewRepledge(c *fiber.Ctx) error {
	ref := repsvc.Ref{}
	if idStr := c.Params("id"); idStr != "" && idStr != "-" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return response.Error(c, "Invalid repledge id", fiber.StatusBadRequest, nil)
		}
		ref.RepledgeID = id
	} else if loanNo := c.Query("loan_no"); loanNo != "" {
		ref.LoanNo = loanNo
	} else {
		return response.Error(c, "Repledge id or loan number required", fiber.StatusBadRequest, nil)
	}

	rp, err := h.Service.GetRepledge(c.Context(), ref)
	if err != nil {
		if errors.Is(err, repsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Repledge fetched successfully", rp, nil)
}

// GET /api/v1/repledges/list-open-repledges
func (h *Handlers) ListOpenRepledges(c *fiber.Ctx) error {
	repledges, err := h.Service.ListOpenRepledges(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Open repledges fetched successfully", repledges, nil)
}

type createRepledgeBody struct {
	RepledgeNo   string `json:"repledge_no"`
	LoanNo       string `json:"loan_no"`
	BankID       string `json:"bank_id"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interest_rate"`
	StartDate    string `json:"start_date"`
}

// POST /api/v1/repledges/create-repledge
func (h *Handlers) CreateRepledge(c *fiber.Ctx) error {
	var body createRepledgeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidDocumentNo(body.RepledgeNo) {
		return response.Error(c, "Invalid repledge number", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidDocumentNo(body.LoanNo) {
		return response.Error(c, "Invalid loan number", fiber.StatusBadRequest, nil)
	}
	bankID, err := uuid.Parse(body.BankID)
	if err != nil {
		return response.Error(c, "Invalid bank id", fiber.StatusBadRequest, nil)
	}
	principal, err := decimal.NewFromString(body.Principal)
	if err != nil {
		return response.Error(c, "Invalid principal", fiber.StatusBadRequest, nil)
	}
	rate, err := decimal.NewFromString(body.InterestRate)
	if err != nil {
		return response.Error(c, "Invalid interest rate", fiber.StatusBadRequest, nil)
	}
	startDate, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		return response.Error(c, "Invalid start date", fiber.StatusBadRequest, nil)
	}

	rp, err := h.Service.CreateRepledge(c.Context(), repsvc.CreateRepledgeInput{
		RepledgeNo:   body.RepledgeNo,
		LoanNo:       body.LoanNo,
		BankID:       bankID,
		Principal:    principal,
		InterestRate: rate,
		StartDate:    startDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, repsvc.ErrBankNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, repsvc.ErrInvalidPrincipal), errors.Is(err, repsvc.ErrInvalidRate):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Repledge created successfully", rp, nil)
}

type quoteBody struct {
	RepledgeID        string `json:"repledge_id"`
	EndDate           string `json:"end_date"`
	CalculationMethod string `json:"calculation_method"`
}

// POST /api/v1/repledges/quote — stateless preview of a close at a candidate
// end date. Recomputable at no cost; nothing is written.
func (h *Handlers) Quote(c *fiber.Ctx) error {
	var body quoteBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := uuid.Parse(body.RepledgeID)
	if err != nil {
		return response.Error(c, "Invalid repledge id", fiber.StatusBadRequest, nil)
	}
	endDate, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		return response.Error(c, "Invalid end date", fiber.StatusBadRequest, nil)
	}
	if !repsvc.ValidCalculationMethod(body.CalculationMethod) {
		return response.Error(c, "Invalid calculation method", fiber.StatusBadRequest, nil)
	}

	rp, err := h.Service.GetRepledge(c.Context(), repsvc.Ref{RepledgeID: id})
	if err != nil {
		if errors.Is(err, repsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}

	q := repsvc.Compute(rp.StartDate, endDate, rp.Principal, rp.InterestRate, repsvc.CalculationMethod(body.CalculationMethod))
	meta := fiber.Map{}
	if !q.MethodImplemented {
		meta["warning"] = "Calculation method not yet available; interest quoted as zero"
	}
	return response.Success(c, "Quote computed successfully", q, meta)
}

type closeBody struct {
	RepledgeID        string `json:"repledge_id"`
	EndDate           string `json:"end_date"`
	PaymentMethod     string `json:"payment_method"`
	CalculationMethod string `json:"calculation_method"`
	CommitToken       string `json:"commit_token"`
}

// POST /api/v1/repledges/close-repledge — recompute server-side and apply the
// atomic settlement. The optional commit_token makes retries idempotent.
func (h *Handlers) CloseRepledge(c *fiber.Ctx) error {
	var body closeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := uuid.Parse(body.RepledgeID)
	if err != nil {
		return response.Error(c, "Invalid repledge id", fiber.StatusBadRequest, nil)
	}
	endDate, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		return response.Error(c, "Invalid end date", fiber.StatusBadRequest, nil)
	}
	if !domain.ValidPaymentMethod(body.PaymentMethod) {
		return response.Error(c, "Invalid payment method", fiber.StatusBadRequest, nil)
	}
	if !repsvc.ValidCalculationMethod(body.CalculationMethod) {
		return response.Error(c, "Invalid calculation method", fiber.StatusBadRequest, nil)
	}
	commitToken := uuid.New()
	if body.CommitToken != "" {
		commitToken, err = uuid.Parse(body.CommitToken)
		if err != nil {
			return response.Error(c, "Invalid commit token", fiber.StatusBadRequest, nil)
		}
	}

	rp, err := h.Service.GetRepledge(c.Context(), repsvc.Ref{RepledgeID: id})
	if err != nil {
		if errors.Is(err, repsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}

	method := repsvc.CalculationMethod(body.CalculationMethod)
	q := repsvc.Compute(rp.StartDate, endDate, rp.Principal, rp.InterestRate, method)

	settlement, err := h.Service.CloseRepledge(c.Context(), repsvc.CloseCommitRequest{
		RepledgeID:         rp.RepledgeID,
		EndDate:            endDate,
		PaymentMethod:      body.PaymentMethod,
		CalculationMethod:  method,
		DurationDays:       q.DurationDays,
		FinalInterestRate:  q.EffectiveRate,
		CalculatedInterest: q.CalculatedInterest,
		TotalPayable:       q.TotalPayable,
		CommitToken:        commitToken,
	})
	if err != nil {
		if errors.Is(err, repsvc.ErrAlreadyClosed) {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Repledge closed successfully", settlement, nil)
}
