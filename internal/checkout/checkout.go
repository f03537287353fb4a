package checkout

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastraloka/batik-storefront/internal/session"
)

var (
	ErrIncompleteProfile  = errors.New("please complete your shipping details before checking out")
	ErrEmptyOrder         = errors.New("cart is empty")
	ErrStockExceeded      = errors.New("requested quantity exceeds available stock")
	ErrCheckoutInFlight   = errors.New("a checkout request is already in progress")
	ErrBadPaymentResponse = errors.New("payment service returned an incomplete response")
)

type LineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// Draft is the ephemeral order payload assembled at checkout time. It lives
// only for the duration of the payment-creation request.
type Draft struct {
	Reference string
	UserID    int
	Customer  session.Profile
	Items     []LineItem
	Total     decimal.Decimal
}

// PaymentSession is the opaque widget token plus order id the backend issued
// for one checkout attempt.
type PaymentSession struct {
	Token   string `json:"token"`
	OrderID string `json:"orderId"`
}

// BuildDraft validates the inputs in order and assembles the payload. All
// failures here abort checkout before any network call is made.
func BuildDraft(profile session.Profile, items []LineItem) (Draft, error) {
	if !profile.Complete() {
		return Draft{}, ErrIncompleteProfile
	}
	if len(items) == 0 {
		return Draft{}, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Quantity > it.Stock {
			return Draft{}, ErrStockExceeded
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !total.IsPositive() {
		return Draft{}, ErrEmptyOrder
	}

	return Draft{
		Reference: uuid.NewString(),
		UserID:    profile.UserID,
		Customer:  profile,
		Items:     items,
		Total:     total,
	}, nil
}
