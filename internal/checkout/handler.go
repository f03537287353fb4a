package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wastraloka/batik-storefront/internal/backend"
	"github.com/wastraloka/batik-storefront/internal/cart"
	"github.com/wastraloka/batik-storefront/internal/session"
	"github.com/wastraloka/batik-storefront/internal/snap"
)

// Handler drives a checkout attempt: stored profile plus cart lines (or a
// single buy-now product) become a draft, the draft becomes a payment
// session, and the session is opened on the widget bridge.
type Handler struct {
	sessions  session.Repository
	store     *cart.Store
	initiator *Initiator
	bridge    *snap.Bridge
}

func NewHandler(sessions session.Repository, store *cart.Store, initiator *Initiator, bridge *snap.Bridge) *Handler {
	return &Handler{sessions: sessions, store: store, initiator: initiator, bridge: bridge}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
}

type buyNowRequest struct {
	Product  cart.Product `json:"product"`
	Quantity int          `json:"quantity"`
}

type checkoutRequest struct {
	BuyNow *buyNowRequest `json:"buyNow,omitempty"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	// script bootstrap must have resolved or checkout stays disabled
	if _, err := h.bridge.Loader().Bootstrap(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": snap.ErrUnavailable.Error()})
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	profile, err := h.sessions.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrIncompleteProfile.Error()})
	}

	items := h.lineItems(c, userID, payload)
	sess := h.bridge.Session(userID)

	// a pending attempt keeps its token; reopen the widget with it instead
	// of requesting a second session for the same order
	if token, orderID, ok := sess.Cached(); ok {
		sess.Open(token, orderID, stockLines(items))
		return c.JSON(PaymentSession{Token: token, OrderID: orderID})
	}

	draft, err := BuildDraft(profile, items)
	if err != nil {
		return h.fail(c, err)
	}

	ps, err := h.initiator.Initiate(c.Context(), draft)
	if err != nil {
		return h.fail(c, err)
	}

	sess.Open(ps.Token, ps.OrderID, stockLines(items))
	return c.JSON(ps)
}

// lineItems builds the draft lines, refetching the cart so the stock check
// runs against the freshest figures the backend has.
func (h *Handler) lineItems(c *fiber.Ctx, userID int, payload *checkoutRequest) []LineItem {
	if payload.BuyNow != nil {
		qty := payload.BuyNow.Quantity
		if qty < 1 {
			qty = 1
		}
		p := payload.BuyNow.Product
		return []LineItem{{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Stock:     p.Stock,
		}}
	}

	snapshot := h.store.Fetch(c.Context(), userID)
	items := make([]LineItem, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		items = append(items, LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Stock:     it.Stock,
		})
	}
	return items
}

func stockLines(items []LineItem) []snap.StockLine {
	lines := make([]snap.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, snap.StockLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrIncompleteProfile), errors.Is(err, ErrEmptyOrder):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrStockExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrCheckoutInFlight):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &apiErr):
		// the backend's own message, verbatim, when it sent one
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": apiErr.Error()})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
}
