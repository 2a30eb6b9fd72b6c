package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"scentstore/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Sentinel errors surfaced to the API layer for status mapping.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotOwned          = errors.New("resource does not belong to user")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order can only be cancelled while packaging")
	ErrNotFinishable     = errors.New("order can only be finished while shipping")
	ErrEmptyCart         = errors.New("no cart items selected")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing connection (used by tests)
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchProducts retrieves products matching a name/brand query, all when empty
func (s *Store) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	var products []models.Product
	if query == "" {
		err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
		return products, err
	}
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%' ORDER BY id",
		query)
	return products, err
}

// GetProductSizes retrieves per-size stock rows for a product
func (s *Store) GetProductSizes(ctx context.Context, productID int64) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := s.db.SelectContext(ctx, &sizes,
		"SELECT * FROM product_sizes WHERE product_id = $1 ORDER BY id", productID)
	return sizes, err
}

// GetProductSizeByID retrieves a single size row
func (s *Store) GetProductSizeByID(ctx context.Context, sizeID int64) (*models.ProductSize, error) {
	var size models.ProductSize
	err := s.db.GetContext(ctx, &size, "SELECT * FROM product_sizes WHERE id = $1", sizeID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product size %d: %w", sizeID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &size, nil
}

// GetProductImages retrieves catalog images for a product
func (s *Store) GetProductImages(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := s.db.SelectContext(ctx, &images,
		"SELECT * FROM product_images WHERE product_id = $1 ORDER BY id", productID)
	return images, err
}

// CreateProduct inserts a product with its sizes and images
func (s *Store) CreateProduct(ctx context.Context, product *models.Product, sizes []models.ProductSize, images []models.ProductImage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, product, `
		INSERT INTO products (name, brand, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		product.Name, product.Brand, product.Description, product.Price)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	for i := range sizes {
		sizes[i].ProductID = product.ID
		err = tx.GetContext(ctx, &sizes[i].ID,
			"INSERT INTO product_sizes (product_id, size, stock) VALUES ($1, $2, $3) RETURNING id",
			product.ID, sizes[i].Size, sizes[i].Stock)
		if err != nil {
			return fmt.Errorf("failed to insert product size: %w", err)
		}
	}

	for i := range images {
		images[i].ProductID = product.ID
		err = tx.GetContext(ctx, &images[i].ID,
			"INSERT INTO product_images (product_id, url) VALUES ($1, $2) RETURNING id",
			product.ID, images[i].URL)
		if err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateProduct updates catalog fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = $1, brand = $2, description = $3, price = $4, updated_at = NOW() WHERE id = $5",
		product.Name, product.Brand, product.Description, product.Price, product.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// UpdateProductStock sets the stock count for a size row
func (s *Store) UpdateProductStock(ctx context.Context, sizeID int64, stock int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE product_sizes SET stock = $1 WHERE id = $2", stock, sizeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product size %d: %w", sizeID, ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product with its sizes and images
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = $1", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM product_sizes WHERE product_id = $1", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// GetProductRatings retrieves ratings for a product
func (s *Store) GetProductRatings(ctx context.Context, productID int64) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.SelectContext(ctx, &ratings,
		"SELECT * FROM ratings WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return ratings, err
}

// GetAverageRating returns the average stars for a product, 0 when unrated
func (s *Store) GetAverageRating(ctx context.Context, productID int64) (float64, error) {
	var avg float64
	err := s.db.GetContext(ctx, &avg,
		"SELECT COALESCE(AVG(stars), 0) FROM ratings WHERE product_id = $1", productID)
	return avg, err
}

// CreateRating inserts a product review
func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) error {
	return s.db.GetContext(ctx, rating, `
		INSERT INTO ratings (product_id, user_id, order_id, stars, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rating.ProductID, rating.UserID, rating.OrderID, rating.Stars, rating.Comment)
}

// decrementStockTx locks a size row and decrements its stock.
// Returns ErrInsufficientStock when the remaining stock cannot cover qty.
func decrementStockTx(ctx context.Context, tx *sqlx.Tx, sizeID int64, qty int) error {
	var stock int
	err := tx.GetContext(ctx, &stock,
		"SELECT stock FROM product_sizes WHERE id = $1 FOR UPDATE", sizeID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("product size %d: %w", sizeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock stock row: %w", err)
	}

	if stock < qty {
		return fmt.Errorf("size %d has %d left, requested %d: %w", sizeID, stock, qty, ErrInsufficientStock)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock - $1 WHERE id = $2", qty, sizeID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}

// restoreStockTx gives stock back to a size row (cancellation path)
func restoreStockTx(ctx context.Context, tx *sqlx.Tx, sizeID int64, qty int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock + $1 WHERE id = $2", qty, sizeID)
	return err
}
