package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront-orders/internal/domain/product"
)

// Service encapsulates order placement, history aggregation, and status
// lookup. Every operation takes the authenticated user ID as an explicit
// parameter.
type Service struct {
	products product.Repository
	orders   Repository

	// now is swappable so status boundaries can be tested deterministically.
	now func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// PlaceOrder validates the cart against the catalog, then persists the order
// with all its items in one atomic unit of work.
//
// Every line is validated before any row is written: the first invalid
// quantity or missing product fails the whole request, so a half-populated
// order is never observable and no compensating deletes are needed. The
// repository transaction is the sole correctness mechanism after that point.
func (s *Service) PlaceOrder(ctx context.Context, userID string, lines []Item) (*Order, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(lines))
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	// Batch fetch all referenced products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	known := make(map[string]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := known[line.ProductID]; !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
	}

	o := &Order{
		ID:     uuid.New().String(),
		UserID: userID,
		Items:  lines,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// History returns the user's orders most-recent-first, each with its items
// joined to catalog products and a total computed from unit prices.
func (s *Service) History(ctx context.Context, userID string) ([]Summary, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summaries := make([]Summary, len(orders))
	for i, o := range orders {
		total := decimal.Zero
		for _, item := range o.Items {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if len(o.Items) == 0 {
			// Orders are created together with at least one item; a bare
			// order row means the storage invariant was violated elsewhere.
			zctx.From(ctx).Warn("order has no items", zap.String("order_id", o.ID))
		}
		summaries[i] = Summary{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			Items:     o.Items,
			Total:     total.Round(2),
		}
	}
	return summaries, nil
}

// Status returns the derived delivery status of one of the user's orders.
// An order that does not exist and an order owned by someone else are
// indistinguishable to the caller: both yield ErrNotFound.
func (s *Service) Status(ctx context.Context, userID, orderID string) (StatusInfo, error) {
	if userID == "" {
		return StatusInfo{}, ErrNoUser
	}

	o, err := s.orders.GetOwned(ctx, orderID, userID)
	if err != nil {
		return StatusInfo{}, err
	}
	return StatusInfo{
		OrderID:   o.ID,
		Status:    DeriveStatus(o.CreatedAt, s.now()),
		CreatedAt: o.CreatedAt,
	}, nil
}
