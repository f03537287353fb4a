package confirm

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/wastraloka/batik-storefront/internal/backend"
)

type API interface {
	ConfirmPayment(ctx context.Context, orderID string) (backend.Confirmation, error)
}

// Handler re-validates the payment outcome when the confirmation route is
// reached, whether by the bridge's scheduled navigation or by a direct
// redirect from the payment provider.
type Handler struct {
	api API
}

func NewHandler(api API) *Handler {
	return &Handler{api: api}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/order-confirmation", h.show)
}

func (h *Handler) show(c *fiber.Ctx) error {
	orderID := c.Query("order_id")
	if len(orderID) < minOrderIDLength {
		return c.Redirect("/", fiber.StatusFound)
	}

	// a provider-side pending redirect should send the user back to where
	// they can retry, not show a false confirmation
	if c.Query("transaction_status") == "pending" {
		return c.Redirect("/", fiber.StatusFound)
	}

	conf, err := h.api.ConfirmPayment(c.Context(), orderID)
	if err != nil {
		log.Printf("confirm: backend check failed for %s: %v", orderID, err)
		return c.Redirect("/", fiber.StatusFound)
	}

	switch conf.Status {
	case "success", "pending":
		return c.JSON(Result{
			Status:         conf.Status,
			OrderID:        orderID,
			Total:          conf.Total.String(),
			TotalFormatted: formatRupiah(conf.Total),
		})
	default:
		return c.Redirect("/", fiber.StatusFound)
	}
}
