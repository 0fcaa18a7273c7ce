// Package handler exposes the storefront over HTTP: account registration and
// login, the product catalog, and the authenticated order endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-orders/internal/domain/auth"
	"github.com/xenking/storefront-orders/internal/domain/order"
	"github.com/xenking/storefront-orders/internal/domain/product"
	"github.com/xenking/storefront-orders/internal/domain/user"
	"github.com/xenking/storefront-orders/pkg/health"
)

// AuthService is the slice of the auth domain the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) error
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// OrderService is the slice of the order domain the HTTP layer needs.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, lines []order.Item) (*order.Order, error)
	History(ctx context.Context, userID string) ([]order.Summary, error)
	Status(ctx context.Context, userID, orderID string) (order.StatusInfo, error)
}

// ProductLister lists the catalog.
type ProductLister interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Handler wires the domain services to HTTP routes.
type Handler struct {
	auth     AuthService
	orders   OrderService
	products ProductLister
	health   *health.Health
}

// New creates a Handler over the given services.
func New(authSvc AuthService, orders OrderService, products ProductLister, h *health.Health) *Handler {
	return &Handler{
		auth:     authSvc,
		orders:   orders,
		products: products,
		health:   h,
	}
}

// Routes returns the chi router with all endpoints mounted. Order endpoints
// require a bearer token; everything else is public.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/livez", h.health.LiveEndpoint)
	r.Get("/readyz", h.health.ReadyEndpoint)

	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/products", h.listProducts)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/order", h.placeOrder)
		r.Get("/order/history", h.orderHistory)
		r.Get("/order/{orderID}/status", h.orderStatus)
	})

	return r
}

// errorResponse is the envelope for every non-2xx body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondError maps a domain error to an HTTP status. Unrecognized errors
// are logged and reported as an opaque 500; internal details never reach the
// client.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		notFound *order.ProductNotFoundError
		badQty   *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, order.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &badQty):
		writeError(w, http.StatusBadRequest, badQty.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, user.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "username or email already taken")
	default:
		zctx.From(ctx).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes the JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
