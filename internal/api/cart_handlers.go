package api

import (
	"net/http"

	"scentstore/internal/models"
	"scentstore/internal/util"

	"github.com/gin-gonic/gin"
)

// getCart lists the user's cart lines with current catalog prices
func (h *Handler) getCart(c *gin.Context) {
	lines, err := h.store.GetCartLines(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var total int64
	for _, line := range lines {
		total += line.UnitPrice * int64(line.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":         lines,
		"total":         total,
		"total_display": util.FormatRupiah(total),
	})
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	SizeID    int64 `json:"size_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// addCartItem adds a product size to the cart, merging quantities
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	item := &models.CartItem{
		UserID:    currentUserID(c),
		ProductID: req.ProductID,
		SizeID:    req.SizeID,
		Quantity:  req.Quantity,
	}
	if err := h.store.AddCartItem(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// updateCartItem changes a cart line's quantity
func (h *Handler) updateCartItem(c *gin.Context) {
	cartItemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.store.UpdateCartItemQuantity(c.Request.Context(), currentUserID(c), cartItemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// deleteCartItem removes a cart line
func (h *Handler) deleteCartItem(c *gin.Context) {
	cartItemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteCartItem(c.Request.Context(), currentUserID(c), cartItemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// getWishlist lists the user's saved products
func (h *Handler) getWishlist(c *gin.Context) {
	products, err := h.store.GetWishlistProducts(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// addWishlistItem saves a product; saving twice is a no-op
func (h *Handler) addWishlistItem(c *gin.Context) {
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}

	if err := h.store.AddWishlistItem(c.Request.Context(), currentUserID(c), productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "saved"})
}

// removeWishlistItem removes a saved product
func (h *Handler) removeWishlistItem(c *gin.Context) {
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}

	if err := h.store.RemoveWishlistItem(c.Request.Context(), currentUserID(c), productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
