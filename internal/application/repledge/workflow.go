package repledge

import (
	"context"
	"sync"
	"time"

	"swarna-backend/internal/domain"

	"github.com/google/uuid"
)

// WorkflowState enumerates the close screen's lifecycle. Closed, LoadError
// and SaveError are terminal for the current record; a fresh Load restarts.
type WorkflowState string

const (
	StateIdle      WorkflowState = "idle"
	StateLoading   WorkflowState = "loading"
	StateLoaded    WorkflowState = "loaded"
	StateSaving    WorkflowState = "saving"
	StateClosed    WorkflowState = "closed"
	StateLoadError WorkflowState = "load_error"
	StateSaveError WorkflowState = "save_error"
)

// CloseParameters are the user-selected inputs for a close. Ephemeral;
// nothing is persisted until commit.
type CloseParameters struct {
	EndDate           *time.Time        `json:"end_date"`
	PaymentMethod     string            `json:"payment_method"`
	CalculationMethod CalculationMethod `json:"calculation_method"`
}

// Snapshot is the observable state published to the UI shell.
type Snapshot struct {
	State       WorkflowState    `json:"state"`
	Repledge    *domain.Repledge `json:"repledge,omitempty"`
	Params      CloseParameters  `json:"params"`
	Quote       *Quote           `json:"quote,omitempty"`
	Error       string           `json:"error,omitempty"`
	SaveError   string           `json:"save_error,omitempty"`
	SaveSuccess bool             `json:"save_success"`
}

// Workflow coordinates closing one repledge: load the record, recompute the
// quote on every parameter change, and commit the settlement exactly once.
// A load generation counter keys in-flight operations so a result landing
// after a newer Load is discarded rather than clobbering the fresh record.
type Workflow struct {
	store Store

	mu          sync.Mutex
	gen         uint64
	state       WorkflowState
	repledge    *domain.Repledge
	params      CloseParameters
	quote       *Quote
	loadErr     string
	saveErr     string
	saveSuccess bool
	commitToken uuid.UUID
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{
		store: store,
		state: StateIdle,
		params: CloseParameters{
			PaymentMethod:     domain.PaymentMethodCash,
			CalculationMethod: Method1,
		},
	}
}

// Load fetches the repledge (with its bank) and restarts the machine. Any
// failure becomes LoadError state; nothing is propagated to the caller.
func (w *Workflow) Load(ctx context.Context, ref Ref) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.state = StateLoading
	w.repledge = nil
	w.quote = nil
	w.loadErr = ""
	w.saveErr = ""
	w.saveSuccess = false
	w.commitToken = uuid.Nil
	w.mu.Unlock()

	rp, err := w.store.GetRepledge(ctx, ref)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		// A newer Load owns the state; drop this result.
		return
	}
	if err != nil {
		w.state = StateLoadError
		w.loadErr = err.Error()
		return
	}
	w.repledge = rp
	w.state = StateLoaded
	w.recomputeLocked()
}

// SetCloseParameters updates the user inputs and synchronously recomputes the
// quote. Purely local; safe to call on every keystroke. Clearing the end
// date clears the quote so a stale preview is never shown.
func (w *Workflow) SetCloseParameters(params CloseParameters) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateLoaded && w.state != StateSaveError {
		return
	}
	w.params = params
	w.state = StateLoaded
	w.saveErr = ""
	w.recomputeLocked()
}

func (w *Workflow) recomputeLocked() {
	// Any input change invalidates the previous logical commit.
	w.commitToken = uuid.Nil
	if w.repledge == nil || w.params.EndDate == nil {
		w.quote = nil
		return
	}
	q := Compute(w.repledge.StartDate, *w.params.EndDate, w.repledge.Principal, w.repledge.InterestRate, w.params.CalculationMethod)
	w.quote = &q
}

// Commit submits the atomic close. Precondition violations (no record, record
// already closed, no quote, no end date, commit in flight) are no-ops; the UI
// disables the control rather than relying on errors here.
func (w *Workflow) Commit(ctx context.Context) {
	w.mu.Lock()
	if !w.canCommitLocked() {
		w.mu.Unlock()
		return
	}
	gen := w.gen
	if w.commitToken == uuid.Nil {
		w.commitToken = uuid.New()
	}
	req := CloseCommitRequest{
		RepledgeID:         w.repledge.RepledgeID,
		EndDate:            *w.params.EndDate,
		PaymentMethod:      w.params.PaymentMethod,
		CalculationMethod:  w.params.CalculationMethod,
		DurationDays:       w.quote.DurationDays,
		FinalInterestRate:  w.quote.EffectiveRate,
		CalculatedInterest: w.quote.CalculatedInterest,
		TotalPayable:       w.quote.TotalPayable,
		CommitToken:        w.commitToken,
	}
	w.state = StateSaving
	w.saveErr = ""
	w.mu.Unlock()

	_, err := w.store.CloseRepledge(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	if err != nil {
		// Quote and inputs are preserved so the user can retry.
		w.state = StateSaveError
		w.saveErr = err.Error()
		return
	}
	w.state = StateClosed
	w.saveSuccess = true
	if w.repledge != nil {
		w.repledge.Status = domain.RepledgeStatusClosed
	}
}

func (w *Workflow) canCommitLocked() bool {
	return w.state != StateSaving &&
		w.repledge != nil &&
		w.repledge.Status != domain.RepledgeStatusClosed &&
		w.quote != nil &&
		w.params.EndDate != nil &&
		(w.state == StateLoaded || w.state == StateSaveError)
}

// Snapshot returns a copy of the observable state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		State:       w.state,
		Repledge:    w.repledge,
		Params:      w.params,
		Error:       w.loadErr,
		SaveError:   w.saveErr,
		SaveSuccess: w.saveSuccess,
	}
	if w.quote != nil {
		q := *w.quote
		snap.Quote = &q
	}
	return snap
}
