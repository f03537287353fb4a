package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrStockExceeded      = errors.New("requested quantity exceeds available stock")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrNotConfirmed       = errors.New("clearing the cart requires confirmation")
	ErrBackendUnavailable = errors.New("could not update cart, please try again")
)

// Item is one product line in a user's cart. Quantity is always a positive
// integer no greater than Stock.
type Item struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image"`
}

// Snapshot is the cart as last synchronized with the backend, with the item
// count and total recomputed from scratch on every resync.
type Snapshot struct {
	Items []Item          `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Product is what the storefront page sends when the user adds to cart.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Image string          `json:"image"`
}

func emptySnapshot() Snapshot {
	return Snapshot{Items: []Item{}, Count: 0, Total: decimal.Zero}
}

func buildSnapshot(items []Item) Snapshot {
	snap := Snapshot{Items: items, Total: decimal.Zero}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	for _, it := range snap.Items {
		snap.Count += it.Quantity
		snap.Total = snap.Total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return snap
}
