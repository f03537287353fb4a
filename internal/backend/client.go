package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the single place this service talks to the commerce backend.
// Responses are narrowed into the typed structs in backend.go before any
// other package sees them. There are no automatic retries; a failed call is
// reported to the caller and retried only by an explicit user action.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:    "commerce-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// 4xx means the backend is alive and rejecting this request; only
		// transport errors and 5xx should open the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode > 0 && apiErr.StatusCode < 500
			}
			return false
		},
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (c *Client) FetchCart(ctx context.Context, userID int) ([]CartItem, error) {
	var res struct {
		Status string     `json:"status"`
		Items  []CartItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart/user/"+strconv.Itoa(userID), nil, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) AddCartItem(ctx context.Context, req AddCartRequest) error {
	return c.do(ctx, http.MethodPost, "/api/cart", req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/api/cart/"+strconv.FormatInt(itemID, 10), body, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/"+strconv.FormatInt(itemID, 10), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/clear/"+strconv.Itoa(userID), nil, nil)
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (PaymentSessionResponse, error) {
	var res PaymentSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/payment/create", req, &res); err != nil {
		return PaymentSessionResponse{}, err
	}
	return res, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, orderID string) (Confirmation, error) {
	body := map[string]string{"order_id": orderID}
	var res Confirmation
	if err := c.do(ctx, http.MethodPost, "/api/payment/confirm", body, &res); err != nil {
		return Confirmation{}, err
	}
	return res, nil
}

func (c *Client) UpdateStock(ctx context.Context, productID int64, quantitySold int) error {
	body := map[string]int{"quantity_sold": quantitySold}
	return c.do(ctx, http.MethodPut, "/api/products/"+strconv.FormatInt(productID, 10)+"/stock", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (Account, error) {
	body := map[string]string{"email": email, "password": password}
	var res struct {
		Status string  `json:"status"`
		User   Account `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return Account{}, err
	}
	return res.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(encoded)
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		b, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			var e struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(b, &e)
			return nil, &APIError{StatusCode: res.StatusCode, Message: e.Message}
		}
		return b, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Message: "malformed response from backend"}
		}
	}
	return nil
}
