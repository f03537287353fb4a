package checkout

import (
	"context"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastraloka/batik-storefront/internal/backend"
	"github.com/wastraloka/batik-storefront/internal/cart"
	"github.com/wastraloka/batik-storefront/internal/session"
	"github.com/wastraloka/batik-storefront/internal/snap"
)

// cartAPI serves a fixed cart; checkout only reads it.
type cartAPI struct {
	items []backend.CartItem
}

func (f *cartAPI) FetchCart(ctx context.Context, userID int) ([]backend.CartItem, error) {
	return f.items, nil
}
func (f *cartAPI) AddCartItem(ctx context.Context, req backend.AddCartRequest) error { return nil }
func (f *cartAPI) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	return nil
}
func (f *cartAPI) DeleteCartItem(ctx context.Context, itemID int64) error { return nil }
func (f *cartAPI) ClearCart(ctx context.Context, userID int) error        { return nil }

type noopStock struct{}

func (noopStock) UpdateStock(ctx context.Context, productID int64, quantitySold int) error {
	return nil
}

func makeCheckoutApp(t *testing.T, payments *fakePayments, profiles []session.Profile, clientKey string) (*fiber.App, *snap.Bridge) {
	t.Helper()

	api := &cartAPI{items: []backend.CartItem{{
		ID:          1,
		ProductID:   7,
		ProductName: "Batik Parang",
		Price:       decimal.NewFromInt(75000),
		Quantity:    2,
		Stock:       5,
	}}}

	bridge := snap.NewBridge(snap.NewLoader("sandbox", clientKey), noopStock{}, snap.DefaultNavDelay)
	handler := NewHandler(
		session.NewInMemoryRepository(profiles),
		cart.NewStore(api),
		NewInitiator(payments),
		bridge,
	)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	handler.RegisterProtectedRoutes(app)
	return app, bridge
}

func TestCheckoutRoute_IssuesSessionThenReusesPendingToken(t *testing.T) {
	payments := &fakePayments{res: backend.PaymentSessionResponse{SnapToken: "abc", OrderID: "ORDER-1001"}}
	app, bridge := makeCheckoutApp(t, payments, []session.Profile{completeProfile()}, "ck-test")

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	b, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(b), `"token":"abc"`)
	assert.Contains(t, string(b), `"orderId":"ORDER-1001"`)
	assert.Equal(t, 1, payments.calls)

	// widget reports pending: session retained, no navigation
	sess := bridge.Session(1)
	sess.HandlePending(snap.CallbackPayload{OrderID: "ORDER-1001"})
	assert.Equal(t, snap.StatePending, sess.Status().State)

	// a fresh attempt reopens with the cached token instead of requesting
	// a second session
	req = httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	b, _ = io.ReadAll(res.Body)
	assert.Contains(t, string(b), `"token":"abc"`)
	assert.Equal(t, 1, payments.calls, "cached token must be reused")
}

func TestCheckoutRoute_MissingProfileAbortsBeforeNetwork(t *testing.T) {
	payments := &fakePayments{res: backend.PaymentSessionResponse{SnapToken: "abc", OrderID: "ORDER-1001"}}
	app, _ := makeCheckoutApp(t, payments, nil, "ck-test")

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Equal(t, 0, payments.calls, "no network call on validation failure")
}

func TestCheckoutRoute_DisabledWhenLoaderFails(t *testing.T) {
	payments := &fakePayments{res: backend.PaymentSessionResponse{SnapToken: "abc", OrderID: "ORDER-1001"}}
	app, _ := makeCheckoutApp(t, payments, []session.Profile{completeProfile()}, "")

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, 0, payments.calls)
}

func TestCheckoutRoute_BuyNowSingleLine(t *testing.T) {
	payments := &fakePayments{res: backend.PaymentSessionResponse{SnapToken: "xyz", OrderID: "ORDER-1002"}}
	app, _ := makeCheckoutApp(t, payments, []session.Profile{completeProfile()}, "ck-test")

	body := `{"buyNow":{"product":{"id":9,"name":"Batik Truntum","price":50000,"stock":3},"quantity":2}}`
	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 1, payments.calls)
}
