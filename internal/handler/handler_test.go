package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-orders/internal/domain/auth"
	"github.com/xenking/storefront-orders/internal/domain/order"
	"github.com/xenking/storefront-orders/internal/domain/product"
	"github.com/xenking/storefront-orders/internal/domain/user"
	"github.com/xenking/storefront-orders/pkg/health"
)

type stubAuth struct {
	registerErr error
	loginToken  string
	loginErr    error
	identity    auth.Identity
	authErr     error
}

func (s *stubAuth) Register(context.Context, auth.RegisterRequest) error {
	return s.registerErr
}

func (s *stubAuth) Login(context.Context, string, string) (string, error) {
	return s.loginToken, s.loginErr
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (auth.Identity, error) {
	if s.authErr != nil {
		return auth.Identity{}, s.authErr
	}
	if token != "valid-token" {
		return auth.Identity{}, auth.ErrUnauthorized
	}
	return s.identity, nil
}

type stubOrders struct {
	placed    *order.Order
	placeErr  error
	summaries []order.Summary
	histErr   error
	status    order.StatusInfo
	statusErr error
}

func (s *stubOrders) PlaceOrder(context.Context, string, []order.Item) (*order.Order, error) {
	return s.placed, s.placeErr
}

func (s *stubOrders) History(context.Context, string) ([]order.Summary, error) {
	return s.summaries, s.histErr
}

func (s *stubOrders) Status(context.Context, string, string) (order.StatusInfo, error) {
	return s.status, s.statusErr
}

type stubProducts struct {
	products []product.Product
	err      error
}

func (s *stubProducts) List(context.Context) ([]product.Product, error) {
	return s.products, s.err
}

func newTestHandler(a *stubAuth, o *stubOrders, p *stubProducts) http.Handler {
	if a == nil {
		a = &stubAuth{identity: auth.Identity{UserID: "user-1"}}
	}
	if o == nil {
		o = &stubOrders{}
	}
	if p == nil {
		p = &stubProducts{}
	}
	return New(a, o, p, health.New()).Routes()
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := newTestHandler(nil, nil, nil)
		w := do(h, http.MethodPost, "/register", "",
			`{"username":"alice","email":"alice@example.com","password":"secret","address":"1 Main St"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "user registered successfully", decodeMap(t, w)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newTestHandler(nil, nil, nil)
		w := do(h, http.MethodPost, "/register", "", `{"username":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username", func(t *testing.T) {
		h := newTestHandler(&stubAuth{registerErr: user.ErrAlreadyExists}, nil, nil)
		w := do(h, http.MethodPost, "/register", "",
			`{"username":"alice","password":"secret"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newTestHandler(nil, nil, nil)
		w := do(h, http.MethodPost, "/register", "", `{"username":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues token", func(t *testing.T) {
		h := newTestHandler(&stubAuth{loginToken: "tok-123"}, nil, nil)
		w := do(h, http.MethodPost, "/login", "", `{"username":"alice","password":"secret"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok-123", decodeMap(t, w)["access_token"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := newTestHandler(&stubAuth{loginErr: auth.ErrInvalidCredentials}, nil, nil)
		w := do(h, http.MethodPost, "/login", "", `{"username":"alice","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid username or password", decodeMap(t, w)["message"])
	})
}

func TestListProducts(t *testing.T) {
	price := decimal.RequireFromString("6.50")
	h := newTestHandler(nil, nil, &stubProducts{products: []product.Product{
		{ID: "1", Name: "Waffle with Berries", Price: price, Image: "/images/waffle.jpg"},
	}})

	w := do(h, http.MethodGet, "/products", "", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var products []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "1", products[0]["id"])
	assert.Equal(t, "Waffle with Berries", products[0]["name"])
}

func TestListProducts_Empty(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	w := do(h, http.MethodGet, "/products", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/order"},
		{http.MethodGet, "/order/history"},
		{http.MethodGet, "/order/abc/status"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(h, tc.method, tc.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = do(h, tc.method, tc.path, "bogus-token", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestPlaceOrder(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		o := &stubOrders{placed: &order.Order{ID: "order-1"}}
		h := newTestHandler(nil, o, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `[{"id":"1","quantity":2}]`)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeMap(t, w)
		assert.Equal(t, "Order placed successfully", body["message"])
		assert.Equal(t, "order-1", body["order_id"])
	})

	t.Run("empty cart", func(t *testing.T) {
		h := newTestHandler(nil, &stubOrders{placeErr: order.ErrEmptyCart}, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `[]`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "cart is empty", decodeMap(t, w)["message"])
	})

	t.Run("unknown product names the id", func(t *testing.T) {
		h := newTestHandler(nil, &stubOrders{
			placeErr: &order.ProductNotFoundError{ProductID: "99"},
		}, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `[{"id":"99","quantity":1}]`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "product 99 not found", decodeMap(t, w)["message"])
	})

	t.Run("invalid quantity", func(t *testing.T) {
		h := newTestHandler(nil, &stubOrders{
			placeErr: &order.InvalidQuantityError{ProductID: "1"},
		}, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `[{"id":"1","quantity":0}]`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage failure is opaque", func(t *testing.T) {
		h := newTestHandler(nil, &stubOrders{
			placeErr: errors.New("pq: deadlock detected on relation orders"),
		}, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `[{"id":"1","quantity":1}]`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeMap(t, w)
		assert.Equal(t, "internal server error", body["message"])
		assert.NotContains(t, w.Body.String(), "deadlock")
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newTestHandler(nil, nil, nil)

		w := do(h, http.MethodPost, "/order", "valid-token", `{"id":"1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHistory(t *testing.T) {
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	o := &stubOrders{summaries: []order.Summary{
		{
			ID:        "order-2",
			CreatedAt: created.Add(time.Hour),
			Items: []order.HistoryItem{
				{ProductID: "1", Name: "Waffle with Berries", UnitPrice: decimal.RequireFromString("6.50"), Quantity: 2},
			},
			Total: decimal.RequireFromString("13.00"),
		},
		{
			ID:        "order-1",
			CreatedAt: created,
			Items:     []order.HistoryItem{},
			Total:     decimal.Zero,
		},
	}}
	h := newTestHandler(nil, o, nil)

	w := do(h, http.MethodGet, "/order/history", "valid-token", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var got []historyOrderResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)

	assert.Equal(t, "order-2", got[0].ID)
	assert.Equal(t, "2026-03-14T13:00:00Z", got[0].Date)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, "Waffle with Berries", got[0].Items[0].Name)
	assert.True(t, got[0].Total.Equal(decimal.RequireFromString("13.00")))

	assert.Equal(t, "order-1", got[1].ID)
	assert.Empty(t, got[1].Items)
	assert.True(t, got[1].Total.IsZero())
}

func TestOrderStatus(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		h := newTestHandler(nil, &stubOrders{status: order.StatusInfo{
			OrderID:   "order-1",
			Status:    order.StatusPacked,
			CreatedAt: created,
		}}, nil)

		w := do(h, http.MethodGet, "/order/order-1/status", "valid-token", "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeMap(t, w)
		assert.Equal(t, "order-1", body["order_id"])
		assert.Equal(t, "Packed", body["status"])
		assert.Equal(t, "2026-03-14T12:00:00Z", body["timestamp"])
	})

	t.Run("not owned or missing", func(t *testing.T) {
		h := newTestHandler(nil, &stubOrders{statusErr: order.ErrNotFound}, nil)

		w := do(h, http.MethodGet, "/order/someone-elses/status", "valid-token", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "order not found", decodeMap(t, w)["message"])
	})
}

func TestBearerToken(t *testing.T) {
	for _, tc := range []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, ok := bearerToken(req)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.token, token, "header %q", tc.header)
	}
}

func TestHealthEndpointsMounted(t *testing.T) {
	hc := health.New()
	hc.SetReady(true)
	h := New(&stubAuth{}, &stubOrders{}, &stubProducts{}, hc).Routes()

	w := do(h, http.MethodGet, "/livez", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
