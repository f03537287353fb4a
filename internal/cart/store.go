package cart

import (
	"context"
	"log"
	"sync"

	"github.com/wastraloka/batik-storefront/internal/backend"
)

// API is the slice of the commerce backend the cart store needs.
type API interface {
	FetchCart(ctx context.Context, userID int) ([]backend.CartItem, error)
	AddCartItem(ctx context.Context, req backend.AddCartRequest) error
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, userID int) error
}

// Store is the single source of truth for each signed-in user's cart. Every
// write goes to the backend first and is followed by a full refetch, so the
// local snapshot never drifts from the backend for longer than one round
// trip. The in-memory stock checks before a write are the only optimistic
// part.
type Store struct {
	mu    sync.Mutex
	api   API
	carts map[int]Snapshot
}

func NewStore(api API) *Store {
	return &Store{api: api, carts: make(map[int]Snapshot)}
}

// Get returns the last synchronized snapshot for the user.
func (s *Store) Get(userID int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.carts[userID]
	if !ok {
		return emptySnapshot()
	}
	return snap
}

// Fetch reloads the full cart from the backend. With no signed-in user the
// snapshot resets to empty. A backend failure is logged and the prior
// snapshot kept; the caller sees no error.
func (s *Store) Fetch(ctx context.Context, userID int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID <= 0 {
		return emptySnapshot()
	}
	s.refreshLocked(ctx, userID)
	return s.carts[userID]
}

// Add puts one unit of the product in the cart. An existing line is
// incremented by one unless that would exceed stock; a new line requires
// stock of at least one.
func (s *Store) Add(ctx context.Context, userID int, p Product) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.carts[userID]
	var existing *Item
	for i := range snap.Items {
		if snap.Items[i].ProductID == p.ID {
			existing = &snap.Items[i]
			break
		}
	}

	if existing != nil {
		if existing.Quantity+1 > existing.Stock {
			return snap, ErrStockExceeded
		}
	} else if p.Stock < 1 {
		return snap, ErrOutOfStock
	}

	err := s.write(ctx, userID, func() error {
		return s.api.AddCartItem(ctx, backend.AddCartRequest{
			UserID:    userID,
			ProductID: p.ID,
			Quantity:  1,
		})
	})
	return s.carts[userID], err
}

// Remove deletes one line, then resynchronizes.
func (s *Store) Remove(ctx context.Context, userID int, itemID int64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.removeLocked(ctx, userID, itemID)
	return s.carts[userID], err
}

// ChangeQuantity sets a line to the requested quantity. Below one it removes
// the line; above stock it rejects and leaves everything unchanged.
func (s *Store) ChangeQuantity(ctx context.Context, userID int, itemID int64, quantity int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.carts[userID]
	var item *Item
	for i := range snap.Items {
		if snap.Items[i].ID == itemID {
			item = &snap.Items[i]
			break
		}
	}
	if item == nil {
		return snap, ErrItemNotFound
	}

	if quantity < 1 {
		err := s.removeLocked(ctx, userID, itemID)
		return s.carts[userID], err
	}
	if quantity > item.Stock {
		return snap, ErrStockExceeded
	}

	err := s.write(ctx, userID, func() error {
		return s.api.UpdateCartItem(ctx, itemID, quantity)
	})
	return s.carts[userID], err
}

// Clear deletes every line for the user. The caller must have collected an
// explicit confirmation from the user first.
func (s *Store) Clear(ctx context.Context, userID int, confirmed bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !confirmed {
		return s.carts[userID], ErrNotConfirmed
	}
	err := s.write(ctx, userID, func() error {
		return s.api.ClearCart(ctx, userID)
	})
	return s.carts[userID], err
}

func (s *Store) removeLocked(ctx context.Context, userID int, itemID int64) error {
	return s.write(ctx, userID, func() error {
		return s.api.DeleteCartItem(ctx, itemID)
	})
}

// write runs a backend mutation and then unconditionally refetches. When the
// mutation fails the refetch is skipped and the caller gets a generic error.
func (s *Store) write(ctx context.Context, userID int, op func() error) error {
	if err := op(); err != nil {
		log.Printf("cart: backend write failed for user %d: %v", userID, err)
		return ErrBackendUnavailable
	}
	s.refreshLocked(ctx, userID)
	return nil
}

func (s *Store) refreshLocked(ctx context.Context, userID int) {
	raw, err := s.api.FetchCart(ctx, userID)
	if err != nil {
		log.Printf("cart: fetch failed for user %d: %v", userID, err)
		return
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Item{
			ID:        r.ID,
			ProductID: r.ProductID,
			Name:      r.ProductName,
			Price:     r.Price,
			Quantity:  r.Quantity,
			Stock:     r.Stock,
			Image:     r.Image,
		})
	}
	s.carts[userID] = buildSnapshot(items)
}
