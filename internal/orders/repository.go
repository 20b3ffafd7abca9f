package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/craftpack/packstore/internal/domain"
)

// Repository persists orders in Postgres. An order is written once,
// inside a transaction covering the order row and its line items; only
// the status column changes afterwards.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	created := *order
	created.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pos_orders (
			id, number, customer_name, customer_email, customer_phone,
			subtotal, tax, shipping, discount, discount_code, total,
			payment_method, payment_status, notes, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	`, created.ID, created.Number,
		created.Customer.Name, created.Customer.Email, created.Customer.Phone,
		created.Subtotal, created.Tax, created.Shipping, created.Discount, created.DiscountCode, created.Total,
		created.PaymentMethod, created.PaymentStatus, created.Notes, created.Status, created.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range created.Items {
		variant, err := json.Marshal(item.Variant)
		if err != nil {
			return nil, fmt.Errorf("marshal variant: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pos_order_items (id, order_id, product_id, name, unit_price, quantity, variant)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), created.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, variant)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, number, customer_name, customer_email, customer_phone,
		       subtotal, tax, shipping, discount, discount_code, total,
		       payment_method, payment_status, notes, status, created_at
		FROM pos_orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.Number,
		&order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
		&order.Subtotal, &order.Tax, &order.Shipping, &order.Discount, &order.DiscountCode, &order.Total,
		&order.PaymentMethod, &order.PaymentStatus, &order.Notes, &order.Status, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, unit_price, quantity, variant
		FROM pos_order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.LineItem
		var variant []byte
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &variant); err != nil {
			return nil, err
		}
		if err := unmarshalVariant(variant, &item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pos_orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// List returns orders newest first, optionally filtered by status.
// Line items come from a single second query keyed by order id.
func (r *Repository) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT id, number, customer_name, customer_email, customer_phone,
		       subtotal, tax, shipping, discount, discount_code, total,
		       payment_method, payment_status, notes, status, created_at
		FROM pos_orders
	`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Number,
			&order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
			&order.Subtotal, &order.Tax, &order.Shipping, &order.Discount, &order.DiscountCode, &order.Total,
			&order.PaymentMethod, &order.PaymentStatus, &order.Notes, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Items = []domain.LineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity, variant
		FROM pos_order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.LineItem
		var variant []byte
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &variant); err != nil {
			return nil, err
		}
		if err := unmarshalVariant(variant, &item); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

func unmarshalVariant(data []byte, item *domain.LineItem) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &item.Variant); err != nil {
		return fmt.Errorf("unmarshal variant: %w", err)
	}
	if len(item.Variant) == 0 {
		item.Variant = nil
	}
	return nil
}
