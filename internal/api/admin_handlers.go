package api

import (
	"net/http"
	"time"

	"scentstore/internal/models"
	"scentstore/internal/service"
	"scentstore/internal/util"

	"github.com/gin-gonic/gin"
)

// dashboard returns today's sales counters for the admin landing page
func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.reports.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":                 stats,
		"today_revenue_display": util.FormatRupiah(stats.TodayRevenue),
	})
}

type productSizeRequest struct {
	Size  string `json:"size" binding:"required"`
	Stock int    `json:"stock" binding:"min=0"`
}

type createProductRequest struct {
	Name        string               `json:"name" binding:"required"`
	Brand       string               `json:"brand" binding:"required"`
	Description string               `json:"description"`
	Price       int64                `json:"price" binding:"required,min=1"`
	Sizes       []productSizeRequest `json:"sizes" binding:"required,min=1,dive"`
	ImageURLs   []string             `json:"image_urls"`
}

// createProduct adds a product with its sizes and images
func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       req.Price,
	}
	sizes := make([]models.ProductSize, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, models.ProductSize{Size: s.Size, Stock: s.Stock})
	}
	images := make([]models.ProductImage, 0, len(req.ImageURLs))
	for _, url := range req.ImageURLs {
		images = append(images, models.ProductImage{URL: url})
	}

	if err := h.catalog.Create(c.Request.Context(), product, sizes, images); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

type updateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Brand       string `json:"brand" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
}

// updateProduct edits product fields
func (h *Handler) updateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	product := &models.Product{
		ID:          productID,
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.catalog.Update(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// deleteProduct removes a product from the catalog
func (h *Handler) deleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type updateStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// updateProductStock sets the stock of one product size
func (h *Handler) updateProductStock(c *gin.Context) {
	sizeID, ok := pathID(c, "sizeID")
	if !ok {
		return
	}

	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.catalog.UpdateStock(c.Request.Context(), sizeID, req.Stock); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// adminListOrders lists orders, optionally filtered by status and channel
func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Query("status"), c.Query("channel"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=PACKAGING SHIPPING DELIVERED"`
	TrackingNumber string `json:"tracking_number"`
}

// updateOrderStatus advances an order along the fulfillment flow
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orders.AdvanceStatus(c.Request.Context(), orderID, req.Status, req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type salesReportQuery struct {
	Period string `form:"period" binding:"required,period"`
	Date   string `form:"date"`
	Format string `form:"format" binding:"omitempty,oneof=pdf xlsx html"`
}

func (q *salesReportQuery) referenceDate() (time.Time, error) {
	if q.Date == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", q.Date)
}

// salesReport returns the aggregated sales table as JSON
func (h *Handler) salesReport(c *gin.Context) {
	var q salesReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindingError(c, err)
		return
	}
	ref, err := q.referenceDate()
	if err != nil {
		respondBindingError(c, err)
		return
	}

	rows, err := h.reports.Aggregate(c.Request.Context(), q.Period, ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": q.Period,
		"rows":   rows,
	})
}

// exportSalesReport downloads the sales table as PDF, XLSX or HTML
func (h *Handler) exportSalesReport(c *gin.Context) {
	var q salesReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindingError(c, err)
		return
	}
	if q.Format == "" {
		q.Format = "pdf"
	}
	ref, err := q.referenceDate()
	if err != nil {
		respondBindingError(c, err)
		return
	}

	rows, err := h.reports.Aggregate(c.Request.Context(), q.Period, ref)
	if err != nil {
		respondError(c, err)
		return
	}

	title := "Sales Report (" + q.Period + ")"
	var body []byte
	var contentType string
	switch q.Format {
	case "pdf":
		body, err = service.RenderPDF(title, rows)
		contentType = "application/pdf"
	case "xlsx":
		body, err = service.RenderXLSX(title, rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "html":
		body, err = service.RenderHTML(title, rows)
		contentType = "text/html; charset=utf-8"
	}
	if err != nil {
		respondError(c, err)
		return
	}

	filename := util.ReportFilename(ref, q.Format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
