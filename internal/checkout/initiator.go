package checkout

import (
	"context"
	"sync"

	"github.com/wastraloka/batik-storefront/internal/backend"
)

type PaymentsAPI interface {
	CreatePayment(ctx context.Context, req backend.PaymentRequest) (backend.PaymentSessionResponse, error)
}

// Initiator turns a validated draft into a payment session. A guard flag
// keeps rapid repeated submissions from requesting more than one session per
// outstanding attempt; it is cleared on every exit path. There is no
// automatic retry anywhere: the user re-triggers checkout explicitly.
type Initiator struct {
	mu       sync.Mutex
	inFlight bool
	api      PaymentsAPI
}

func NewInitiator(api PaymentsAPI) *Initiator {
	return &Initiator{api: api}
}

func (i *Initiator) Initiate(ctx context.Context, draft Draft) (PaymentSession, error) {
	i.mu.Lock()
	if i.inFlight {
		i.mu.Unlock()
		return PaymentSession{}, ErrCheckoutInFlight
	}
	i.inFlight = true
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.inFlight = false
		i.mu.Unlock()
	}()

	items := make([]backend.PaymentItem, 0, len(draft.Items))
	for _, it := range draft.Items {
		items = append(items, backend.PaymentItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	res, err := i.api.CreatePayment(ctx, backend.PaymentRequest{
		UserID:      draft.UserID,
		Reference:   draft.Reference,
		Items:       items,
		TotalAmount: draft.Total,
		CustomerDetails: backend.CustomerDetails{
			Name:       draft.Customer.Name,
			Email:      draft.Customer.Email,
			Phone:      draft.Customer.Phone,
			Address:    draft.Customer.Address,
			City:       draft.Customer.City,
			PostalCode: draft.Customer.PostalCode,
		},
	})
	if err != nil {
		return PaymentSession{}, err
	}
	if res.SnapToken == "" || res.OrderID == "" {
		return PaymentSession{}, ErrBadPaymentResponse
	}

	return PaymentSession{Token: res.SnapToken, OrderID: res.OrderID}, nil
}
