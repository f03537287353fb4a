package backend

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// the commerce backend sends and expects plain JSON numbers for money
	decimal.MarshalJSONWithoutQuotes = true
}

// CartItem is one line of a user's cart as the commerce backend reports it.
type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
}

type AddCartRequest struct {
	UserID    int   `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CustomerDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type PaymentItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type PaymentRequest struct {
	UserID          int             `json:"user_id"`
	Reference       string          `json:"reference"`
	Items           []PaymentItem   `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CustomerDetails CustomerDetails `json:"customer_details"`
}

// PaymentSessionResponse is the token/order pair the backend issues for one
// checkout attempt. Either field may come back empty on a misbehaving server;
// callers must treat that as a contract violation.
type PaymentSessionResponse struct {
	SnapToken string `json:"snap_token"`
	OrderID   string `json:"order_id"`
}

type Confirmation struct {
	Status  string          `json:"status"`
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

type Account struct {
	UserID     int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// APIError carries the backend's own message verbatim when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed (status %d)", e.StatusCode)
}
