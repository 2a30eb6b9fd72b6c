package api

import (
	"net/http"
	"time"

	"scentstore/internal/models"
	"scentstore/internal/service"

	"github.com/gin-gonic/gin"
)

// createPOSTransaction records a counter sale
func (h *Handler) createPOSTransaction(c *gin.Context) {
	var req service.CreatePOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	detail, err := h.pos.CreateTransaction(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// listPOSTransactions lists counter sales, optionally for one day
func (h *Handler) listPOSTransactions(c *gin.Context) {
	var orders []models.Order
	var err error

	if dateStr := c.Query("date"); dateStr != "" {
		var day time.Time
		day, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondBindingError(c, err)
			return
		}
		orders, err = h.pos.ListForDay(c.Request.Context(), day)
	} else {
		orders, err = h.pos.List(c.Request.Context(), c.Query("status"))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
