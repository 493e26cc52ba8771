package closeworkflow

import (
	"sync"
	"time"

	repsvc "swarna-backend/internal/application/repledge"
	"swarna-backend/internal/domain"
	"swarna-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Registry holds one close workflow per active screen, keyed by a
// server-issued workflow id.
type Registry struct {
	store repsvc.Store

	mu        sync.Mutex
	workflows map[uuid.UUID]*repsvc.Workflow
}

func NewRegistry(store repsvc.Store) *Registry {
	return &Registry{
		store:     store,
		workflows: make(map[uuid.UUID]*repsvc.Workflow),
	}
}

func (r *Registry) create() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.workflows[id] = repsvc.NewWorkflow(r.store)
	return id
}

func (r *Registry) get(id uuid.UUID) *repsvc.Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workflows[id]
}

type Handlers struct {
	Registry *Registry
}

const dateLayout = "2006-01-02"

// POST /api/v1/close-workflow/start
func (h *Handlers) Start(c *fiber.Ctx) error {
	id := h.Registry.create()
	return response.SuccessCreated(c, "Close workflow started", fiber.Map{"workflow_id": id}, nil)
}

type loadBody struct {
	RepledgeID string `json:"repledge_id"`
	LoanNo     string `json:"loan_no"`
}

// POST /api/v1/close-workflow/:id/load
func (h *Handlers) Load(c *fiber.Ctx) error {
	w, err := h.workflow(c)
	if err != nil {
		return err
	}
	var body loadBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ref := repsvc.Ref{LoanNo: body.LoanNo}
	if body.RepledgeID != "" {
		id, err := uuid.Parse(body.RepledgeID)
		if err != nil {
			return response.Error(c, "Invalid repledge id", fiber.StatusBadRequest, nil)
		}
		ref.RepledgeID = id
	}

	w.Load(c.Context(), ref)
	return response.Success(c, "Repledge load finished", w.Snapshot(), nil)
}

type paramsBody struct {
	EndDate           string `json:"end_date"`
	PaymentMethod     string `json:"payment_method"`
	CalculationMethod string `json:"calculation_method"`
}

// POST /api/v1/close-workflow/:id/params — set close parameters; the quote in
// the returned snapshot is already recomputed.
func (h *Handlers) SetParams(c *fiber.Ctx) error {
	w, err := h.workflow(c)
	if err != nil {
		return err
	}
	var body paramsBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	paymentMethod := domain.PaymentMethodCash
	if body.PaymentMethod != "" {
		if !domain.ValidPaymentMethod(body.PaymentMethod) {
			return response.Error(c, "Invalid payment method", fiber.StatusBadRequest, nil)
		}
		paymentMethod = body.PaymentMethod
	}
	method := repsvc.Method1
	if body.CalculationMethod != "" {
		if !repsvc.ValidCalculationMethod(body.CalculationMethod) {
			return response.Error(c, "Invalid calculation method", fiber.StatusBadRequest, nil)
		}
		method = repsvc.CalculationMethod(body.CalculationMethod)
	}
	params := repsvc.CloseParameters{
		PaymentMethod:     paymentMethod,
		CalculationMethod: method,
	}
	if body.EndDate != "" {
		endDate, err := time.Parse(dateLayout, body.EndDate)
		if err != nil {
			return response.Error(c, "Invalid end date", fiber.StatusBadRequest, nil)
		}
		params.EndDate = &endDate
	}

	w.SetCloseParameters(params)
	return response.Success(c, "Close parameters updated", w.Snapshot(), nil)
}

// POST /api/v1/close-workflow/:id/commit
func (h *Handlers) Commit(c *fiber.Ctx) error {
	w, err := h.workflow(c)
	if err != nil {
		return err
	}
	w.Commit(c.Context())
	return response.Success(c, "Commit finished", w.Snapshot(), nil)
}

// GET /api/v1/close-workflow/:id/state
func (h *Handlers) State(c *fiber.Ctx) error {
	w, err := h.workflow(c)
	if err != nil {
		return err
	}
	return response.Success(c, "Workflow state fetched", w.Snapshot(), nil)
}

func (h *Handlers) workflow(c *fiber.Ctx) (*repsvc.Workflow, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, response.Error(c, "Invalid workflow id", fiber.StatusBadRequest, nil)
	}
	w := h.Registry.get(id)
	if w == nil {
		return nil, response.Error(c, "Workflow not found", fiber.StatusNotFound, nil)
	}
	return w, nil
}
