package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"scentstore/internal/auth"
	"scentstore/internal/service"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users         *service.UserService
	catalog       *service.CatalogService
	orders        *service.OrderService
	payments      *service.PaymentService
	notifications *service.NotificationService
	reports       *service.ReportService
	pos           *service.POSService
	store         *store.Store
	auth          *auth.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	payments *service.PaymentService,
	notifications *service.NotificationService,
	reports *service.ReportService,
	pos *service.POSService,
	st *store.Store,
	authMgr *auth.Manager,
) *Handler {
	registerValidators()
	return &Handler{
		users:         users,
		catalog:       catalog,
		orders:        orders,
		payments:      payments,
		notifications: notifications,
		reports:       reports,
		pos:           pos,
		store:         st,
		auth:          authMgr,
	}
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case service.PeriodDay, service.PeriodWeek, service.PeriodMonth, service.PeriodYear:
				return true
			}
			return false
		})
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.POST("/payments/webhook", h.paymentWebhook)
	}

	authed := v1.Group("")
	authed.Use(h.authRequired())
	{
		authed.GET("/profile", h.getProfile)
		authed.PUT("/profile", h.updateProfile)

		authed.GET("/cart", h.getCart)
		authed.POST("/cart", h.addCartItem)
		authed.PUT("/cart/:id", h.updateCartItem)
		authed.DELETE("/cart/:id", h.deleteCartItem)

		authed.GET("/wishlist", h.getWishlist)
		authed.POST("/wishlist/:productID", h.addWishlistItem)
		authed.DELETE("/wishlist/:productID", h.removeWishlistItem)

		authed.GET("/orders", h.listOrders)
		authed.POST("/orders", h.createOrder)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders/:id/cancel", h.cancelOrder)
		authed.POST("/orders/:id/finish", h.finishOrder)
		authed.GET("/orders/:id/payment", h.getOrderPayment)

		authed.POST("/products/:id/ratings", h.addRating)

		authed.GET("/notifications", h.listNotifications)
		authed.GET("/notifications/unread-count", h.unreadNotificationCount)
		authed.POST("/notifications/:id/read", h.markNotificationRead)
		authed.POST("/notifications/read-all", h.markAllNotificationsRead)
	}

	admin := v1.Group("/admin")
	admin.Use(h.authRequired(), h.adminOnly())
	{
		admin.GET("/dashboard", h.dashboard)

		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.PUT("/products/sizes/:sizeID/stock", h.updateProductStock)

		admin.GET("/orders", h.adminListOrders)
		admin.PUT("/orders/:id/status", h.updateOrderStatus)

		admin.GET("/reports/sales", h.salesReport)
		admin.GET("/reports/sales/export", h.exportSalesReport)

		admin.POST("/pos/transactions", h.createPOSTransaction)
		admin.GET("/pos/transactions", h.listPOSTransactions)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, store.ErrNotOwned), errors.Is(err, service.ErrRatingNotEligible):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed", "details": err.Error()})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrNotCancellable),
		errors.Is(err, store.ErrNotFinishable):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "details": err.Error()})
	case errors.Is(err, store.ErrEmptyCart), errors.Is(err, service.ErrInvalidPeriod):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request", "details": err.Error()})
	case errors.Is(err, service.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
