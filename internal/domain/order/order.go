package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation and lookup.
var (
	ErrNoUser    = errors.New("missing user identity")
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)

// ProductNotFoundError indicates a cart line references a product that does
// not exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a cart line has a quantity below one.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// Order is a committed, immutable record of a purchase request. CreatedAt is
// assigned by the database at commit time, never by the client.
type Order struct {
	ID        string
	UserID    string
	Items     []Item
	CreatedAt time.Time
}

// Item is one line of an order: a product reference and a quantity.
type Item struct {
	ProductID string
	Quantity  int
}

// HistoryOrder is one order as returned by the history query, with item
// rows already joined to their product name and unit price.
type HistoryOrder struct {
	ID        string
	CreatedAt time.Time
	Items     []HistoryItem
}

// HistoryItem is one order line joined to its product.
type HistoryItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary is the presentation form of an order in the user's history,
// including the total computed from catalog prices.
type Summary struct {
	ID        string
	CreatedAt time.Time
	Items     []HistoryItem
	Total     decimal.Decimal
}

// StatusInfo is the result of an ownership-checked status lookup.
type StatusInfo struct {
	OrderID   string
	Status    Status
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
//
// Create must persist the order row and all of its item rows as a single
// atomic unit: either every row is visible afterwards or none is. It fills
// in the server-assigned CreatedAt on success.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]HistoryOrder, error)
	GetOwned(ctx context.Context, orderID, userID string) (*Order, error)
}
