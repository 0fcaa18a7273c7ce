package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-orders/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id) VALUES ($1, $2) RETURNING created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)`

	// LEFT JOINs keep an order visible even if its items are missing, so a
	// broken row cannot make the whole history query disappear.
	listOrdersByUserSQL = `SELECT o.id, o.created_at, i.product_id, p.name, p.price, i.quantity
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id ASC, i.id ASC`

	getOwnedOrderSQL = `SELECT id, user_id, created_at FROM orders
		WHERE id = $1 AND user_id = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order row and every item row in a single transaction.
// The deferred rollback is a no-op after a successful commit and guarantees
// release on every other exit path, so no partial order is ever visible to a
// concurrent reader. created_at is assigned by the database and written back
// into o.
//
// Product existence is validated by the caller before Create runs; the
// product_id foreign key still aborts the whole transaction if a referenced
// product is deleted between validation and commit.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, insertOrderSQL, o.ID, o.UserID).Scan(&o.CreatedAt); err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL, o.ID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("inserting item %q for order %q: %w", item.ProductID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// ListByUser returns the user's orders with items joined to products,
// ordered most-recent-first. Ties on created_at break on order ID ascending
// so repeated calls over unchanged data return the same sequence.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.HistoryOrder, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	defer rows.Close()

	var out []order.HistoryOrder
	for rows.Next() {
		var (
			id        string
			createdAt time.Time
			// Item columns are NULL for an order without items (LEFT JOIN).
			productID *string
			name      *string
			price     *decimal.Decimal
			quantity  *int
		)
		if err := rows.Scan(&id, &createdAt, &productID, &name, &price, &quantity); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, order.HistoryOrder{ID: id, CreatedAt: createdAt})
		}
		if productID == nil {
			continue
		}

		last := &out[len(out)-1]
		last.Items = append(last.Items, order.HistoryItem{
			ProductID: *productID,
			Name:      *name,
			UnitPrice: *price,
			Quantity:  *quantity,
		})
	}
	return out, rows.Err()
}

// GetOwned returns the order only if it exists AND belongs to the given
// user. Both a missing order and someone else's order collapse to
// order.ErrNotFound, so the endpoint cannot be used to probe for other
// users' order IDs.
func (r *OrderRepository) GetOwned(ctx context.Context, orderID, userID string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOwnedOrderSQL, orderID, userID).Scan(
		&o.ID, &o.UserID, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return &o, nil
}
