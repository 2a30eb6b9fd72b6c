package api

import (
	"net/http"

	"scentstore/internal/models"

	"github.com/gin-gonic/gin"
)

// listProducts handles catalog listing and search
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns one product with sizes, images and ratings
func (h *Handler) getProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.catalog.GetDetail(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

type ratingRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// addRating records a review against a delivered order
func (h *Handler) addRating(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	rating := &models.Rating{
		ProductID: productID,
		UserID:    currentUserID(c),
		OrderID:   req.OrderID,
		Stars:     req.Stars,
		Comment:   req.Comment,
	}
	if err := h.catalog.AddRating(c.Request.Context(), rating); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rating": rating})
}
