package api

import (
	"net/http"

	"scentstore/internal/gateway"
	"scentstore/internal/service"
	"scentstore/internal/util"

	"github.com/gin-gonic/gin"
)

// listOrders lists the authenticated user's orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// createOrder handles checkout of selected cart rows
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := h.orders.CreateFromCart(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder returns one of the user's orders with items and payment
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.orders.Get(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// cancelOrder cancels a PACKAGING order and restores stock
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// finishOrder confirms delivery of a SHIPPING order
func (h *Handler) finishOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Finish(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// getOrderPayment returns the QRIS transaction for polling
func (h *Handler) getOrderPayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.payments.GetTransaction(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// paymentWebhook receives gateway notifications. The gateway retries
// on non-2xx, so rejected payloads are logged and acknowledged.
func (h *Handler) paymentWebhook(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), &n); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
