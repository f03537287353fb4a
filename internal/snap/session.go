package snap

import (
	"context"
	"log"
	"sync"
	"time"
)

// StockLine is the quantity sold per product, reported to the backend when a
// payment succeeds.
type StockLine struct {
	ProductID int64
	Quantity  int
}

type StockUpdater interface {
	UpdateStock(ctx context.Context, productID int64, quantitySold int) error
}

// Session runs the callback state machine for one checkout attempt. The
// hosted widget owns the ordering of its callbacks; the only ordering rule
// enforced here is that a user close cancels any scheduled post-success
// navigation, whatever fired before it.
type Session struct {
	mu sync.Mutex

	state   State
	token   string
	orderID string
	lines   []StockLine

	successSeen bool
	navTimer    *time.Timer
	navDelay    time.Duration
	redirect    string
	message     string

	stock  StockUpdater
	events chan Outcome
}

// Status is a point-in-time snapshot the page can poll. Redirect becomes
// non-empty only when the post-success navigation delay has elapsed without
// the widget being closed.
type Status struct {
	State    State  `json:"state"`
	OrderID  string `json:"orderId,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func newSession(stock StockUpdater, navDelay time.Duration) *Session {
	return &Session{
		state:    StateIdle,
		navDelay: navDelay,
		stock:    stock,
		events:   make(chan Outcome, 8),
	}
}

// Events streams every outcome the widget reports, in the order the bridge
// received them.
func (s *Session) Events() <-chan Outcome {
	return s.events
}

// Open starts a payment attempt with the given session token. It also serves
// reopening with a cached token after a pending outcome.
func (s *Session) Open(token, orderID string, lines []StockLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopNavTimerLocked()
	s.state = StateAwaiting
	s.token = token
	s.orderID = orderID
	s.lines = lines
	s.successSeen = false
	s.redirect = ""
	s.message = ""
}

// Cached returns the retained token/order pair, if the previous attempt
// ended pending. Terminal outcomes always clear the pair.
func (s *Session) Cached() (token, orderID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending && s.token != "" {
		return s.token, s.orderID, true
	}
	return "", "", false
}

// HandleSuccess processes the widget's success callback. Only a whitelisted
// transaction status counts as paid; any other status is still pending.
func (s *Session) HandleSuccess(p CallbackPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaiting {
		return
	}

	if !paidStatuses[p.TransactionStatus] {
		log.Printf("snap: success callback with status %q for %s, treating as pending", p.TransactionStatus, p.OrderID)
		s.toPendingLocked()
		return
	}

	s.state = StateSuccess
	s.successSeen = true
	s.emitLocked(Outcome{State: StateSuccess, OrderID: s.orderID})

	go s.reportStock(s.lines)

	orderID := s.orderID
	s.navTimer = time.AfterFunc(s.navDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// the close handler may have won the race and cleared the flag
		if !s.successSeen || s.state != StateSuccess {
			return
		}
		s.redirect = "/order-confirmation?order_id=" + orderID
	})
}

// HandlePending processes the widget's pending callback: the session is
// retained so the attempt can be resumed, and nothing navigates away.
func (s *Session) HandlePending(p CallbackPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaiting {
		return
	}
	s.toPendingLocked()
}

// HandleError processes the widget's error callback. The session is cleared
// so the next attempt starts fresh.
func (s *Session) HandleError(p CallbackPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaiting {
		return
	}

	s.state = StateError
	s.token = ""
	orderID := s.orderID
	s.orderID = ""
	s.message = p.StatusMessage
	if s.message == "" {
		s.message = "payment failed, please try again"
	}
	s.emitLocked(Outcome{State: StateError, OrderID: orderID, Message: s.message})
}

// HandleClose processes the user dismissing the widget. It always wins:
// the session is cleared and any scheduled navigation cancelled, even when a
// success callback fired moments earlier.
func (s *Session) HandleClose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return
	}

	s.stopNavTimerLocked()
	orderID := s.orderID
	s.state = StateCancelled
	s.token = ""
	s.orderID = ""
	s.successSeen = false
	s.redirect = ""
	s.message = ""
	s.emitLocked(Outcome{State: StateCancelled, OrderID: orderID})
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:    s.state,
		OrderID:  s.orderID,
		Message:  s.message,
		Redirect: s.redirect,
	}
}

func (s *Session) toPendingLocked() {
	s.state = StatePending
	s.message = "complete your payment with the selected method, then return here"
	s.emitLocked(Outcome{State: StatePending, OrderID: s.orderID, Message: s.message})
}

func (s *Session) stopNavTimerLocked() {
	if s.navTimer != nil {
		s.navTimer.Stop()
		s.navTimer = nil
	}
}

func (s *Session) emitLocked(o Outcome) {
	select {
	case s.events <- o:
	default:
	}
}

func (s *Session) reportStock(lines []StockLine) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, l := range lines {
		if err := s.stock.UpdateStock(ctx, l.ProductID, l.Quantity); err != nil {
			log.Printf("snap: stock update failed for product %d: %v", l.ProductID, err)
		}
	}
}

// Bridge hands out one session per signed-in user; the in-flight checkout
// guard already limits each user to one outstanding attempt. Sessions are
// reused across attempts and kept for the process lifetime, so the map is
// bounded by the number of distinct users who reach checkout.
type Bridge struct {
	mu       sync.Mutex
	loader   *Loader
	stock    StockUpdater
	navDelay time.Duration
	sessions map[int]*Session
}

// DefaultNavDelay is how long a successful payment waits before navigating
// to the confirmation route, leaving the widget's own success screen time to
// show. Closing the widget within the window cancels the navigation.
const DefaultNavDelay = 2 * time.Second

func NewBridge(loader *Loader, stock StockUpdater, navDelay time.Duration) *Bridge {
	if navDelay <= 0 {
		navDelay = DefaultNavDelay
	}
	return &Bridge{
		loader:   loader,
		stock:    stock,
		navDelay: navDelay,
		sessions: make(map[int]*Session),
	}
}

func (b *Bridge) Loader() *Loader {
	return b.loader
}

func (b *Bridge) Session(userID int) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[userID]
	if !ok {
		s = newSession(b.stock, b.navDelay)
		b.sessions[userID] = s
	}
	return s
}
