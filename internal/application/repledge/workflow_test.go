package repledge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swarna-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkflowTest(t *testing.T) (*Workflow, *Service, *domain.Repledge) {
	svc, db := setupServiceTest(t)
	rp := seedRepledge(t, db)
	return NewWorkflow(svc), svc, rp
}

func endDateParams(end time.Time) CloseParameters {
	return CloseParameters{
		EndDate:           &end,
		PaymentMethod:     domain.PaymentMethodCash,
		CalculationMethod: Method1,
	}
}

func TestWorkflow_LoadAndQuote(t *testing.T) {
	w, _, rp := setupWorkflowTest(t)

	assert.Equal(t, StateIdle, w.Snapshot().State)

	w.Load(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	snap := w.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	require.NotNil(t, snap.Repledge)
	assert.Equal(t, "RP-1001", snap.Repledge.RepledgeNo)
	assert.Nil(t, snap.Quote, "no quote until an end date is chosen")

	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	snap = w.Snapshot()
	require.NotNil(t, snap.Quote)
	assert.Equal(t, 60, snap.Quote.DurationDays)
	assert.Equal(t, "166.67", snap.Quote.CalculatedInterest.StringFixed(2))
}

func TestWorkflow_ClearingEndDateClearsQuote(t *testing.T) {
	w, _, rp := setupWorkflowTest(t)
	w.Load(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, w.Snapshot().Quote)

	w.SetCloseParameters(CloseParameters{PaymentMethod: domain.PaymentMethodCash, CalculationMethod: Method1})
	assert.Nil(t, w.Snapshot().Quote)
}

func TestWorkflow_LoadError(t *testing.T) {
	w, _, _ := setupWorkflowTest(t)

	w.Load(context.Background(), Ref{RepledgeID: uuid.New()})
	snap := w.Snapshot()
	assert.Equal(t, StateLoadError, snap.State)
	assert.Equal(t, ErrNotFound.Error(), snap.Error)
	assert.Nil(t, snap.Repledge)
}

func TestWorkflow_CommitHappyPath(t *testing.T) {
	w, svc, rp := setupWorkflowTest(t)
	w.Load(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	w.Commit(context.Background())
	snap := w.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.True(t, snap.SaveSuccess)
	assert.Equal(t, domain.RepledgeStatusClosed, snap.Repledge.Status)

	stored, err := svc.GetRepledge(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	require.NoError(t, err)
	assert.Equal(t, domain.RepledgeStatusClosed, stored.Status)
}

func TestWorkflow_CommitPreconditionsNoOp(t *testing.T) {
	w, _, rp := setupWorkflowTest(t)

	// Nothing loaded: no-op.
	w.Commit(context.Background())
	assert.Equal(t, StateIdle, w.Snapshot().State)

	// Loaded but no end date (hence no quote): no-op.
	w.Load(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	w.Commit(context.Background())
	assert.Equal(t, StateLoaded, w.Snapshot().State)
}

func TestWorkflow_CommitOnClosedRecordNoOp(t *testing.T) {
	w, svc, rp := setupWorkflowTest(t)
	_, err := svc.CloseRepledge(context.Background(), closeReq(rp))
	require.NoError(t, err)

	w.Load(context.Background(), Ref{RepledgeID: rp.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	w.Commit(context.Background())
	snap := w.Snapshot()
	assert.NotEqual(t, StateClosed, snap.State)
	assert.False(t, snap.SaveSuccess)
}

// stubStore drives failure and in-flight scenarios the real store cannot
// produce deterministically.
type stubStore struct {
	mu        sync.Mutex
	repledge  *domain.Repledge
	closeErr  error
	gate      chan struct{}
	closeReqs []CloseCommitRequest
}

func (s *stubStore) GetRepledge(ctx context.Context, ref Ref) (*domain.Repledge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repledge == nil {
		return nil, ErrNotFound
	}
	cp := *s.repledge
	return &cp, nil
}

func (s *stubStore) CloseRepledge(ctx context.Context, req CloseCommitRequest) (*domain.RepledgeSettlement, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.closeReqs = append(s.closeReqs, req)
	s.mu.Unlock()
	if s.closeErr != nil {
		return nil, s.closeErr
	}
	return &domain.RepledgeSettlement{RepledgeID: req.RepledgeID, CommitToken: req.CommitToken}, nil
}

func stubRepledge() *domain.Repledge {
	return &domain.Repledge{
		RepledgeID:   uuid.New(),
		RepledgeNo:   "RP-9",
		LoanNo:       "GL-9",
		Principal:    decimal.NewFromInt(50000),
		InterestRate: decimal.NewFromInt(2),
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:       domain.RepledgeStatusOpen,
	}
}

func TestWorkflow_SaveErrorPreservesQuoteAndAllowsRetry(t *testing.T) {
	store := &stubStore{repledge: stubRepledge(), closeErr: errors.New("connection reset")}
	w := NewWorkflow(store)
	w.Load(context.Background(), Ref{RepledgeID: store.repledge.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	w.Commit(context.Background())
	snap := w.Snapshot()
	assert.Equal(t, StateSaveError, snap.State)
	assert.Equal(t, "connection reset", snap.SaveError)
	require.NotNil(t, snap.Quote, "quote survives a failed save for retry")

	// Retry succeeds and reuses the same commit token.
	store.closeErr = nil
	w.Commit(context.Background())
	snap = w.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	require.Len(t, store.closeReqs, 2)
	assert.Equal(t, store.closeReqs[0].CommitToken, store.closeReqs[1].CommitToken)
	assert.NotEqual(t, uuid.Nil, store.closeReqs[0].CommitToken)
}

func TestWorkflow_DoubleCommitRace(t *testing.T) {
	store := &stubStore{repledge: stubRepledge(), gate: make(chan struct{})}
	w := NewWorkflow(store)
	w.Load(context.Background(), Ref{RepledgeID: store.repledge.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	done := make(chan struct{})
	go func() {
		w.Commit(context.Background())
		close(done)
	}()

	// Wait for the first commit to enter Saving, then fire a second one.
	require.Eventually(t, func() bool {
		return w.Snapshot().State == StateSaving
	}, time.Second, 5*time.Millisecond)
	w.Commit(context.Background())

	close(store.gate)
	<-done

	assert.Equal(t, StateClosed, w.Snapshot().State)
	assert.Len(t, store.closeReqs, 1, "second commit while saving must be a no-op")
}

func TestWorkflow_StaleCommitResultDiscarded(t *testing.T) {
	store := &stubStore{repledge: stubRepledge(), gate: make(chan struct{})}
	w := NewWorkflow(store)
	w.Load(context.Background(), Ref{RepledgeID: store.repledge.RepledgeID})
	w.SetCloseParameters(endDateParams(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	done := make(chan struct{})
	go func() {
		w.Commit(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		return w.Snapshot().State == StateSaving
	}, time.Second, 5*time.Millisecond)

	// Navigate to a different record while the commit is in flight.
	other := stubRepledge()
	store.mu.Lock()
	store.repledge = other
	store.mu.Unlock()
	w.Load(context.Background(), Ref{RepledgeID: other.RepledgeID})

	close(store.gate)
	<-done

	snap := w.Snapshot()
	assert.Equal(t, StateLoaded, snap.State, "stale commit result must not clobber the new record")
	assert.Equal(t, other.RepledgeID, snap.Repledge.RepledgeID)
	assert.False(t, snap.SaveSuccess)
}
