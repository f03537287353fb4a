package snap

import (
	"errors"
	"sync"
)

// State of one checkout attempt against the hosted Snap widget.
type State string

const (
	StateIdle      State = "idle"
	StateAwaiting  State = "awaiting_payment"
	StateSuccess   State = "success"
	StatePending   State = "pending"
	StateError     State = "error"
	StateCancelled State = "cancelled"
)

// paidStatuses are the only transaction statuses the success callback may
// report that actually mean "paid". Anything else inside onSuccess is
// treated as still pending, never as success.
var paidStatuses = map[string]bool{
	"settlement": true,
	"capture":    true,
	"success":    true,
}

// CallbackPayload is what the widget hands to its callbacks. order_id is
// always present; transaction_status and status_message only for
// success/error.
type CallbackPayload struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusMessage     string `json:"status_message"`
}

type Outcome struct {
	State   State  `json:"state"`
	OrderID string `json:"orderId"`
	Message string `json:"message,omitempty"`
}

var ErrUnavailable = errors.New("payment service unavailable")

const (
	sandboxScriptURL    = "https://app.sandbox.midtrans.com/snap/snap.js"
	productionScriptURL = "https://app.midtrans.com/snap/snap.js"
)

// Bootstrap is what the page needs to load the hosted widget script.
type Bootstrap struct {
	ScriptURL string `json:"scriptUrl"`
	ClientKey string `json:"clientKey"`
}

// Loader resolves the widget bootstrap exactly once per process, mirroring
// the one-script-tag-per-page rule on the browser side. A failed resolution
// sticks: checkout stays disabled until the service restarts.
type Loader struct {
	once      sync.Once
	env       string
	clientKey string
	boot      Bootstrap
	err       error
}

func NewLoader(env, clientKey string) *Loader {
	return &Loader{env: env, clientKey: clientKey}
}

func (l *Loader) Bootstrap() (Bootstrap, error) {
	l.once.Do(func() {
		if l.clientKey == "" {
			l.err = ErrUnavailable
			return
		}
		url := sandboxScriptURL
		if l.env == "production" {
			url = productionScriptURL
		}
		l.boot = Bootstrap{ScriptURL: url, ClientKey: l.clientKey}
	})
	return l.boot, l.err
}
