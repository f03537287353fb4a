package snap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStock struct {
	mu    sync.Mutex
	calls map[int64]int
}

func newRecordingStock() *recordingStock {
	return &recordingStock{calls: make(map[int64]int)}
}

func (r *recordingStock) UpdateStock(ctx context.Context, productID int64, quantitySold int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[productID] = quantitySold
	return nil
}

func (r *recordingStock) sold(productID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[productID]
}

func openSession(t *testing.T, navDelay time.Duration) (*Session, *recordingStock) {
	t.Helper()
	stock := newRecordingStock()
	s := newSession(stock, navDelay)
	s.Open("tok-abc", "ORDER-1001", []StockLine{{ProductID: 7, Quantity: 2}})
	return s, stock
}

func TestSuccess_WhitelistedStatusOnly(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	// a success callback carrying a non-paid status is pending, not success
	s.HandleSuccess(CallbackPayload{OrderID: "ORDER-1001", TransactionStatus: "pending"})
	assert.Equal(t, StatePending, s.Status().State)

	// the session is retained for a cached reopen
	token, orderID, ok := s.Cached()
	require.True(t, ok)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, "ORDER-1001", orderID)
}

func TestSuccess_SettlementSchedulesNavigationAndStockUpdate(t *testing.T) {
	s, stock := openSession(t, 20*time.Millisecond)

	s.HandleSuccess(CallbackPayload{OrderID: "ORDER-1001", TransactionStatus: "settlement"})
	require.Equal(t, StateSuccess, s.Status().State)
	assert.Empty(t, s.Status().Redirect, "redirect must wait for the delay")

	assert.Eventually(t, func() bool {
		return s.Status().Redirect == "/order-confirmation?order_id=ORDER-1001"
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return stock.sold(7) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestClose_AlwaysWinsOverScheduledNavigation(t *testing.T) {
	// Scenario: settlement fires, user closes the widget before the delayed
	// navigation; the close cancels it and clears the session.
	s, _ := openSession(t, 50*time.Millisecond)

	s.HandleSuccess(CallbackPayload{OrderID: "ORDER-1001", TransactionStatus: "settlement"})
	time.Sleep(10 * time.Millisecond)
	s.HandleClose()

	st := s.Status()
	assert.Equal(t, StateCancelled, st.State)
	assert.Empty(t, st.OrderID)

	// past the original delay: the cancelled navigation must never fire
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, s.Status().Redirect)

	_, _, ok := s.Cached()
	assert.False(t, ok, "no cached session after close")
}

func TestPending_RetainsSessionWithoutNavigation(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	s.HandlePending(CallbackPayload{OrderID: "ORDER-1001"})
	st := s.Status()
	assert.Equal(t, StatePending, st.State)
	assert.NotEmpty(t, st.Message)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, s.Status().Redirect)

	_, _, ok := s.Cached()
	assert.True(t, ok)
}

func TestError_ClearsSession(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	s.HandleError(CallbackPayload{OrderID: "ORDER-1001", StatusMessage: "card declined"})
	st := s.Status()
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, "card declined", st.Message)

	_, _, ok := s.Cached()
	assert.False(t, ok)
}

func TestError_FallbackMessage(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	s.HandleError(CallbackPayload{OrderID: "ORDER-1001"})
	assert.Equal(t, "payment failed, please try again", s.Status().Message)
}

func TestReopen_StartsCycleOver(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	s.HandleError(CallbackPayload{OrderID: "ORDER-1001"})
	require.Equal(t, StateError, s.Status().State)

	s.Open("tok-new", "ORDER-1002", nil)
	st := s.Status()
	assert.Equal(t, StateAwaiting, st.State)
	assert.Equal(t, "ORDER-1002", st.OrderID)
	assert.Empty(t, st.Message)
}

func TestEvents_StreamInOrder(t *testing.T) {
	s, _ := openSession(t, 20*time.Millisecond)

	s.HandleSuccess(CallbackPayload{OrderID: "ORDER-1001", TransactionStatus: "capture"})
	s.HandleClose()

	first := <-s.Events()
	second := <-s.Events()
	assert.Equal(t, StateSuccess, first.State)
	assert.Equal(t, StateCancelled, second.State)
}

func TestLoader_ResolvesOncePerEnvironment(t *testing.T) {
	l := NewLoader("production", "ck-live")
	boot, err := l.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, productionScriptURL, boot.ScriptURL)
	assert.Equal(t, "ck-live", boot.ClientKey)

	l = NewLoader("sandbox", "ck-test")
	boot, err = l.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, sandboxScriptURL, boot.ScriptURL)
}

func TestLoader_MissingClientKeyDisablesCheckout(t *testing.T) {
	l := NewLoader("sandbox", "")
	_, err := l.Bootstrap()
	require.ErrorIs(t, err, ErrUnavailable)

	// the failure sticks for the process lifetime
	_, err = l.Bootstrap()
	assert.ErrorIs(t, err, ErrUnavailable)
}
