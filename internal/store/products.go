package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasleem/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, s.db.Rebind("SELECT * FROM products WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id DESC")
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	query := s.db.Rebind(`
		INSERT INTO products (name, description, wholesale_price, selling_price_min, category, image_url, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &p.ID, query,
		p.Name, p.Description, p.WholesalePrice, p.SellingPriceMin, p.Category, p.ImageURL, p.Stock,
		p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the editable fields of a product.
// Past order items keep their own price and cost snapshots.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE products
		SET name = ?, description = ?, wholesale_price = ?, selling_price_min = ?,
		    category = ?, image_url = ?, stock = ?, updated_at = ?
		WHERE id = ?`),
		p.Name, p.Description, p.WholesalePrice, p.SellingPriceMin, p.Category, p.ImageURL, p.Stock,
		p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	updated, err := s.GetProductByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

// DeleteProduct deletes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
