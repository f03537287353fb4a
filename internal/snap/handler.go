package snap

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wastraloka/batik-storefront/internal/session"
)

// Handler wires the widget's browser-side callbacks into the per-user
// session state machine and serves the script bootstrap.
type Handler struct {
	bridge *Bridge
}

func NewHandler(bridge *Bridge) *Handler {
	return &Handler{bridge: bridge}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/payment/bootstrap", h.bootstrap)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payment/callback/success", h.onSuccess)
	app.Post("/api/v1/payment/callback/pending", h.onPending)
	app.Post("/api/v1/payment/callback/error", h.onError)
	app.Post("/api/v1/payment/callback/close", h.onClose)
	app.Get("/api/v1/payment/status", h.status)
}

func (h *Handler) bootstrap(c *fiber.Ctx) error {
	boot, err := h.bridge.Loader().Bootstrap()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": ErrUnavailable.Error()})
	}
	return c.JSON(boot)
}

func (h *Handler) onSuccess(c *fiber.Ctx) error {
	return h.callback(c, func(s *Session, p CallbackPayload) { s.HandleSuccess(p) })
}

func (h *Handler) onPending(c *fiber.Ctx) error {
	return h.callback(c, func(s *Session, p CallbackPayload) { s.HandlePending(p) })
}

func (h *Handler) onError(c *fiber.Ctx) error {
	return h.callback(c, func(s *Session, p CallbackPayload) { s.HandleError(p) })
}

func (h *Handler) onClose(c *fiber.Ctx) error {
	return h.callback(c, func(s *Session, p CallbackPayload) { s.HandleClose() })
}

func (h *Handler) callback(c *fiber.Ctx, apply func(*Session, CallbackPayload)) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CallbackPayload)
	_ = c.BodyParser(payload) // the close callback has no body

	sess := h.bridge.Session(userID)
	apply(sess, *payload)
	return c.JSON(sess.Status())
}

func (h *Handler) status(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(h.bridge.Session(userID).Status())
}
