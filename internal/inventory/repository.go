package inventory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/craftpack/packstore/internal/domain"
)

// ErrInsufficientStock is returned when a decrement would take stock
// below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.StockLevel, error) {
	return r.list(ctx, `
		SELECT product_id, available, low_stock_threshold
		FROM stock_levels
		ORDER BY product_id
	`)
}

// ListLowStock returns items at or below their threshold, for the admin
// low-stock view.
func (r *Repository) ListLowStock(ctx context.Context) ([]domain.StockLevel, error) {
	return r.list(ctx, `
		SELECT product_id, available, low_stock_threshold
		FROM stock_levels
		WHERE available <= low_stock_threshold
		ORDER BY product_id
	`)
}

func (r *Repository) list(ctx context.Context, query string) ([]domain.StockLevel, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []domain.StockLevel
	for rows.Next() {
		var stock domain.StockLevel
		if err := rows.Scan(&stock.ProductID, &stock.Available, &stock.LowStockThreshold); err != nil {
			return nil, err
		}
		items = append(items, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetStock(ctx context.Context, productID string) (*domain.StockLevel, error) {
	stock := &domain.StockLevel{}

	err := r.db.QueryRowContext(ctx, `
		SELECT product_id, available, low_stock_threshold
		FROM stock_levels
		WHERE product_id = $1
	`, productID).Scan(&stock.ProductID, &stock.Available, &stock.LowStockThreshold)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return stock, nil
}

// Decrement reduces available stock after an order is created. The
// WHERE clause keeps stock non-negative without a separate read.
func (r *Repository) Decrement(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stock_levels
		SET available = available - $2
		WHERE product_id = $1 AND available >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// Restock adds received stock for a product.
func (r *Repository) Restock(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stock_levels
		SET available = available + $2
		WHERE product_id = $1
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return errors.New("unknown product")
	}

	return nil
}
