package service

import (
	"context"
	"errors"

	"scentstore/internal/models"
	"scentstore/internal/redisclient"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"go.uber.org/zap"
)

// ErrRatingNotEligible is returned when a user tries to review a
// product outside a delivered order of theirs
var ErrRatingNotEligible = errors.New("rating requires a delivered order containing the product")

// ProductDetail is the full catalog view of one product
type ProductDetail struct {
	Product       models.Product        `json:"product"`
	Sizes         []models.ProductSize  `json:"sizes"`
	Images        []models.ProductImage `json:"images"`
	Ratings       []models.Rating       `json:"ratings"`
	AverageRating float64               `json:"average_rating"`
	PriceDisplay  string                `json:"price_display"`
}

// CatalogService serves the product catalog with a read-through cache
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{store: st, redis: redis, logger: util.GetLogger()}
}

// Search lists products matching the query; an empty query lists all
func (cs *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Search")
	defer span.End()

	return cs.store.SearchProducts(ctx, query)
}

// GetDetail returns one product with sizes, images and ratings,
// cache-first
func (cs *CatalogService) GetDetail(ctx context.Context, productID int64) (*ProductDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetDetail")
	defer span.End()

	var detail ProductDetail
	hit, err := cs.redis.GetCachedProduct(ctx, productID, &detail)
	if err != nil {
		cs.logger.Warn("Product cache read failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	if hit {
		return &detail, nil
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	sizes, err := cs.store.GetProductSizes(ctx, productID)
	if err != nil {
		return nil, err
	}
	images, err := cs.store.GetProductImages(ctx, productID)
	if err != nil {
		return nil, err
	}
	ratings, err := cs.store.GetProductRatings(ctx, productID)
	if err != nil {
		return nil, err
	}
	avg, err := cs.store.GetAverageRating(ctx, productID)
	if err != nil {
		return nil, err
	}

	detail = ProductDetail{
		Product:       *product,
		Sizes:         sizes,
		Images:        images,
		Ratings:       ratings,
		AverageRating: avg,
		PriceDisplay:  util.FormatRupiah(product.Price),
	}

	if err := cs.redis.CacheProduct(ctx, productID, &detail); err != nil {
		cs.logger.Warn("Product cache write failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	return &detail, nil
}

// Create adds a product with its sizes and images
func (cs *CatalogService) Create(ctx context.Context, product *models.Product, sizes []models.ProductSize, images []models.ProductImage) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Create")
	defer span.End()

	if err := cs.store.CreateProduct(ctx, product, sizes, images); err != nil {
		return err
	}
	cs.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return nil
}

// Update edits product fields and drops the cached detail
func (cs *CatalogService) Update(ctx context.Context, product *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Update")
	defer span.End()

	if err := cs.store.UpdateProduct(ctx, product); err != nil {
		return err
	}
	if err := cs.redis.InvalidateProduct(ctx, product.ID); err != nil {
		cs.logger.Warn("Product cache invalidation failed", zap.Int64("product_id", product.ID), zap.Error(err))
	}
	return nil
}

// UpdateStock sets the stock of one size and drops the cached detail
func (cs *CatalogService) UpdateStock(ctx context.Context, sizeID int64, stock int) error {
	size, err := cs.store.GetProductSizeByID(ctx, sizeID)
	if err != nil {
		return err
	}
	if err := cs.store.UpdateProductStock(ctx, sizeID, stock); err != nil {
		return err
	}
	if err := cs.redis.InvalidateProduct(ctx, size.ProductID); err != nil {
		cs.logger.Warn("Product cache invalidation failed", zap.Int64("product_id", size.ProductID), zap.Error(err))
	}
	return nil
}

// Delete removes a product and drops the cached detail
func (cs *CatalogService) Delete(ctx context.Context, productID int64) error {
	if err := cs.store.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	if err := cs.redis.InvalidateProduct(ctx, productID); err != nil {
		cs.logger.Warn("Product cache invalidation failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	return nil
}

// AddRating records a review. The reviewer must own the referenced
// order, the order must be DELIVERED, and it must contain the product.
func (cs *CatalogService) AddRating(ctx context.Context, rating *models.Rating) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddRating")
	defer span.End()

	order, err := cs.store.GetOrderByID(ctx, rating.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != rating.UserID || order.Status != models.OrderStatusDelivered {
		return ErrRatingNotEligible
	}

	items, err := cs.store.GetOrderItemsByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	found := false
	for _, item := range items {
		if item.ProductID == rating.ProductID {
			found = true
			break
		}
	}
	if !found {
		return ErrRatingNotEligible
	}

	if err := cs.store.CreateRating(ctx, rating); err != nil {
		return err
	}
	if err := cs.redis.InvalidateProduct(ctx, rating.ProductID); err != nil {
		cs.logger.Warn("Product cache invalidation failed", zap.Int64("product_id", rating.ProductID), zap.Error(err))
	}
	return nil
}
