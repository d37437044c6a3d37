package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// searchLimit caps SearchProducts result sets.
const searchLimit = 20

// ProductService manages the product catalog. Stock adjustments driven by
// bills go through BillService; this service only handles direct operator
// edits.
type ProductService interface {
	CreateProduct(ctx context.Context, code, name string, price, retailPrice decimal.Decimal, stock int) (*Product, error)
	GetProduct(ctx context.Context, code string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// SearchProducts does a case-insensitive substring match over code and
	// name, capped at 20 results.
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	UpdateProduct(ctx context.Context, code string, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, code string) error
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, code, name, price, retail_price, stock, created_at, updated_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.RetailPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productService) CreateProduct(ctx context.Context, code, name string, price, retailPrice decimal.Decimal, stock int) (*Product, error) {
	if stock < 0 {
		return nil, &QuantityError{Code: code, Qty: stock}
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, price, retail_price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		code, name, price, retailPrice, stock))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("product %s: %w", code, ErrDuplicateCode)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, code string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Code: code}
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", code, err)
	}
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (s *productService) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY code
		LIMIT $2
	`, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (s *productService) UpdateProduct(ctx context.Context, code string, patch ProductPatch) (*Product, error) {
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, &QuantityError{Code: code, Qty: *patch.Stock}
	}

	set := "updated_at = NOW()"
	args := []any{code}
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.RetailPrice != nil {
		add("retail_price", *patch.RetailPrice)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}

	p, err := scanProduct(s.pool.QueryRow(ctx,
		"UPDATE products SET "+set+" WHERE code = $1 RETURNING "+productColumns, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Code: code}
		}
		return nil, fmt.Errorf("failed to update product %s: %w", code, err)
	}
	return p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Code: code}
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.RetailPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
