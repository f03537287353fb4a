package confirm

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wastraloka/batik-storefront/internal/backend"
)

type fakeConfirmAPI struct {
	res   backend.Confirmation
	err   error
	calls int
}

func (f *fakeConfirmAPI) ConfirmPayment(ctx context.Context, orderID string) (backend.Confirmation, error) {
	f.calls++
	return f.res, f.err
}

func makeApp(api *fakeConfirmAPI) *fiber.App {
	app := fiber.New()
	NewHandler(api).RegisterPublicRoutes(app)
	return app
}

func TestShow_ShortOrderIDRedirectsWithoutBackendCall(t *testing.T) {
	api := &fakeConfirmAPI{}
	app := makeApp(api)

	for _, target := range []string{
		"/order-confirmation",
		"/order-confirmation?order_id=ORD",
	} {
		res, _ := app.Test(httptest.NewRequest("GET", target, nil))
		if res.StatusCode != fiber.StatusFound {
			t.Fatalf("%s: expected redirect, got %d", target, res.StatusCode)
		}
		if loc := res.Header.Get("Location"); loc != "/" {
			t.Fatalf("%s: expected redirect home, got %q", target, loc)
		}
	}
	if api.calls != 0 {
		t.Fatalf("backend called %d times for implausible order ids", api.calls)
	}
}

func TestShow_PendingRedirectParamsGoHome(t *testing.T) {
	api := &fakeConfirmAPI{}
	app := makeApp(api)

	res, _ := app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORDER-1001&transaction_status=pending", nil))
	if res.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect, got %d", res.StatusCode)
	}
	if api.calls != 0 {
		t.Fatal("backend must not be called on a provider pending redirect")
	}
}

func TestShow_RendersSuccessWithFormattedTotal(t *testing.T) {
	api := &fakeConfirmAPI{res: backend.Confirmation{Status: "success", OrderID: "ORDER-1001", Total: decimal.NewFromInt(150000)}}
	app := makeApp(api)

	res, _ := app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORDER-1001", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"status":"success"`) {
		t.Fatalf("missing success status: %s", string(b))
	}
	if !strings.Contains(string(b), "Rp 150.000") {
		t.Fatalf("missing formatted total: %s", string(b))
	}
}

func TestShow_ShortestRealOrderIDConfirms(t *testing.T) {
	api := &fakeConfirmAPI{res: backend.Confirmation{Status: "success", OrderID: "ORD1", Total: decimal.NewFromInt(150000)}}
	app := makeApp(api)

	res, _ := app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORD1", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for a real order id, got %d", res.StatusCode)
	}
	if api.calls != 1 {
		t.Fatalf("expected one backend confirmation, got %d", api.calls)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"status":"success"`) || !strings.Contains(string(b), "Rp 150.000") {
		t.Fatalf("unexpected body: %s", string(b))
	}
}

func TestShow_PendingStatusRenders(t *testing.T) {
	api := &fakeConfirmAPI{res: backend.Confirmation{Status: "pending", Total: decimal.NewFromInt(80000)}}
	app := makeApp(api)

	res, _ := app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORDER-1002", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}

func TestShow_UnknownStatusOrFailureRedirectsHome(t *testing.T) {
	api := &fakeConfirmAPI{res: backend.Confirmation{Status: "expire"}}
	app := makeApp(api)
	res, _ := app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORDER-1003", nil))
	if res.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect for unknown status, got %d", res.StatusCode)
	}

	api = &fakeConfirmAPI{err: errors.New("timeout")}
	app = makeApp(api)
	res, _ = app.Test(httptest.NewRequest("GET", "/order-confirmation?order_id=ORDER-1003", nil))
	if res.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect on backend failure, got %d", res.StatusCode)
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[int64]string{
		0:       "Rp 0",
		950:     "Rp 950",
		50000:   "Rp 50.000",
		150000:  "Rp 150.000",
		1250000: "Rp 1.250.000",
	}
	for n, want := range cases {
		if got := formatRupiah(decimal.NewFromInt(n)); got != want {
			t.Errorf("formatRupiah(%d) = %q, want %q", n, got, want)
		}
	}
}
