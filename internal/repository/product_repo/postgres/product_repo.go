package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/repository/product_repo"
)

type pgProductRepository struct{}

func NewProductRepository() product_repo.ProductRepository {
	return &pgProductRepository{}
}

func (r *pgProductRepository) Create(ctx context.Context, q domain.Querier, p *domain.Product) error {
	query := `INSERT INTO products (id, name, description, category, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *pgProductRepository) GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Product, error) {
	p := &domain.Product{}
	query := `SELECT id, name, description, category, created_at, updated_at FROM products WHERE id = $1`
	err := q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return p, nil
}

func (r *pgProductRepository) List(ctx context.Context, q domain.Querier, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT id, name, description, category, created_at, updated_at FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return products, nil
}
