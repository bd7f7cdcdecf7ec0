package service

import (
	"context"
	"errors"
	"strings"

	"tasleem/internal/models"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"go.uber.org/zap"
)

const defaultCategory = "عام"

// CatalogService manages the product catalog
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ProductRequest carries product fields. Nil fields are left unchanged on update.
type ProductRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	WholesalePrice  *int64  `json:"wholesalePrice"`
	SellingPriceMin *int64  `json:"sellingPriceMin"`
	Category        *string `json:"category"`
	ImageURL        *string `json:"imageUrl"`
	Stock           *int    `json:"stock"`
}

func (r *ProductRequest) apply(p *models.Product) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.WholesalePrice != nil {
		p.WholesalePrice = *r.WholesalePrice
	}
	if r.SellingPriceMin != nil {
		p.SellingPriceMin = *r.SellingPriceMin
	}
	if r.Category != nil {
		p.Category = strings.TrimSpace(*r.Category)
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" || p.Stock < 0 ||
		p.WholesalePrice < 0 || p.WholesalePrice > MaxUnitPrice ||
		p.SellingPriceMin < 0 || p.SellingPriceMin > MaxUnitPrice {
		return newError(KindValidation, MsgProductInvalid)
	}
	return nil
}

// ListProducts lists the catalog, newest first
func (cs *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := cs.store.GetProducts(ctx)
	if err != nil {
		return nil, Unexpected(err)
	}
	return products, nil
}

// GetProduct retrieves a product
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := cs.store.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, MsgProductNotFound)
	}
	if err != nil {
		return nil, Unexpected(err)
	}
	return product, nil
}

// CreateProduct adds a product. Name and wholesale price are required.
func (cs *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if req.Name == nil || req.WholesalePrice == nil {
		return nil, newError(KindValidation, MsgProductInvalid)
	}

	product := &models.Product{Category: defaultCategory}
	req.apply(product)
	if product.Category == "" {
		product.Category = defaultCategory
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := cs.store.CreateProduct(ctx, product); err != nil {
		return nil, Unexpected(err)
	}

	cs.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("wholesale_price", product.WholesalePrice))
	return product, nil
}

// UpdateProduct edits a product. Past order items keep their own price snapshot.
func (cs *CatalogService) UpdateProduct(ctx context.Context, id int64, req *ProductRequest) (*models.Product, error) {
	product, err := cs.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	req.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err = cs.store.UpdateProduct(ctx, product)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, MsgProductNotFound)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	cs.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

// DeleteProduct removes a product from the catalog
func (cs *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := cs.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, MsgProductNotFound)
	}
	if err != nil {
		return Unexpected(err)
	}

	cs.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}
