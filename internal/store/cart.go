package store

import (
	"context"
	"database/sql"
	"fmt"

	"scentstore/internal/models"

	"github.com/jmoiron/sqlx"
)

// CartLine is a cart row joined with the current catalog price
type CartLine struct {
	models.CartItem
	ProductName string `db:"product_name" json:"product_name"`
	Size        string `db:"size" json:"size"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
}

// AddCartItem upserts a cart line, bumping quantity for an existing
// product+size pair.
func (s *Store) AddCartItem(ctx context.Context, item *models.CartItem) error {
	return s.db.GetContext(ctx, item, `
		INSERT INTO cart_items (user_id, product_id, size_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, size_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, quantity, created_at, updated_at`,
		item.UserID, item.ProductID, item.SizeID, item.Quantity)
}

// UpdateCartItemQuantity sets the quantity of a cart line owned by the user
func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3",
		quantity, cartItemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart item %d: %w", cartItemID, ErrNotFound)
	}
	return nil
}

// DeleteCartItem removes a cart line owned by the user
func (s *Store) DeleteCartItem(ctx context.Context, userID, cartItemID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2", cartItemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart item %d: %w", cartItemID, ErrNotFound)
	}
	return nil
}

// GetCartLines retrieves the user's cart joined with catalog prices
func (s *Store) GetCartLines(ctx context.Context, userID int64) ([]CartLine, error) {
	var lines []CartLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT c.id, c.user_id, c.product_id, c.size_id, c.quantity, c.created_at, c.updated_at,
		       p.name AS product_name, ps.size, p.price AS unit_price
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		JOIN product_sizes ps ON ps.id = c.size_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`, userID)
	return lines, err
}

// getCartLinesForUpdateTx locks the selected cart rows together with
// their catalog prices. Every requested id must exist and belong to
// the user.
func getCartLinesForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID int64, cartItemIDs []int64) ([]CartLine, error) {
	if len(cartItemIDs) == 0 {
		return nil, ErrEmptyCart
	}

	query, args, err := sqlx.In(`
		SELECT c.id, c.user_id, c.product_id, c.size_id, c.quantity, c.created_at, c.updated_at,
		       p.name AS product_name, ps.size, p.price AS unit_price
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		JOIN product_sizes ps ON ps.id = c.size_id
		WHERE c.id IN (?) AND c.user_id = ?
		FOR UPDATE OF c`, cartItemIDs, userID)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var lines []CartLine
	if err := tx.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, err
	}
	if len(lines) != len(cartItemIDs) {
		return nil, fmt.Errorf("%d of %d cart items missing: %w", len(cartItemIDs)-len(lines), len(cartItemIDs), ErrNotOwned)
	}
	return lines, nil
}

// AddWishlistItem saves a product for a user, idempotently
func (s *Store) AddWishlistItem(ctx context.Context, userID, productID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, productID)
	return err
}

// RemoveWishlistItem removes a saved product
func (s *Store) RemoveWishlistItem(ctx context.Context, userID, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("wishlist item: %w", ErrNotFound)
	}
	return nil
}

// GetWishlistProducts retrieves the user's saved products
func (s *Store) GetWishlistProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.* FROM products p
		JOIN wishlist_items w ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC`, userID)
	if err == sql.ErrNoRows {
		return []models.Product{}, nil
	}
	return products, err
}
