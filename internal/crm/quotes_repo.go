package crm

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/craftpack/packstore/internal/domain"
)

type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) (*domain.Quote, error) {
	created := *quote
	created.ID = uuid.New().String()
	created.Status = domain.QuoteStatusNew
	created.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id, name, email, company, phone, product_type, quantity,
			length_mm, width_mm, height_mm, material,
			printing_required, custom_design, additional_comments, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, created.ID, created.Name, created.Email, created.Company, created.Phone,
		created.ProductType, created.Quantity,
		created.Dimensions.Length, created.Dimensions.Width, created.Dimensions.Height,
		created.Material, created.PrintingRequired, created.CustomDesign,
		created.AdditionalComments, created.Status, created.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *QuoteRepository) List(ctx context.Context, filter ListFilter) ([]domain.Quote, int, error) {
	where := ``
	args := []any{}
	if filter.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, email, company, phone, product_type, quantity,
		       length_mm, width_mm, height_mm, material,
		       printing_required, custom_design, additional_comments, status, created_at
		FROM quotes
	` + where + ` ORDER BY created_at DESC`
	n := len(args)
	query += ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var quotes []domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, company, phone, product_type, quantity,
		       length_mm, width_mm, height_mm, material,
		       printing_required, custom_design, additional_comments, status, created_at
		FROM quotes
		WHERE id = $1
	`, id)

	q, err := scanQuote(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &q, nil
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE quotes SET status = $1 WHERE id = $2
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

func (r *QuoteRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func scanQuote(scan func(...any) error) (domain.Quote, error) {
	var q domain.Quote
	err := scan(&q.ID, &q.Name, &q.Email, &q.Company, &q.Phone,
		&q.ProductType, &q.Quantity,
		&q.Dimensions.Length, &q.Dimensions.Width, &q.Dimensions.Height,
		&q.Material, &q.PrintingRequired, &q.CustomDesign,
		&q.AdditionalComments, &q.Status, &q.CreatedAt)
	return q, err
}
