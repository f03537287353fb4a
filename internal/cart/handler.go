package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wastraloka/batik-storefront/internal/session"
)

// Handler exposes the cart store to the storefront pages.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Put("/api/v1/cart/:itemId<[0-9]+>", h.changeQuantity)
	app.Delete("/api/v1/cart/:itemId<[0-9]+>", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(h.store.Fetch(c.Context(), userID))
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(Product)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	snap, err := h.store.Add(c.Context(), userID, *payload)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) changeQuantity(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	itemID, err := strconv.ParseInt(c.Params("itemId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid item id"})
	}

	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	snap, err := h.store.ChangeQuantity(c.Context(), userID, itemID, payload.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	itemID, err := strconv.ParseInt(c.Params("itemId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid item id"})
	}

	snap, err := h.store.Remove(c.Context(), userID, itemID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

type clearRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(clearRequest)
	_ = c.BodyParser(payload) // absent body means not confirmed

	snap, err := h.store.Clear(c.Context(), userID, payload.Confirmed)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrStockExceeded), errors.Is(err, ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotConfirmed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": ErrBackendUnavailable.Error()})
	}
}
