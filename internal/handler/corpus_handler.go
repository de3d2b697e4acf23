package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/model"
	"github.com/ridwanfathin/market-receipts-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CorpusHandler handles the purchase history, canonical products and their metrics
type CorpusHandler struct {
	corpusService *service.CorpusService
	log           *zap.Logger
}

// NewCorpusHandler creates a new corpus handler
func NewCorpusHandler(corpusService *service.CorpusService, log *zap.Logger) *CorpusHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CorpusHandler{
		corpusService: corpusService,
		log:           log,
	}
}

// GetState returns the stored purchase history
// @Summary Get purchase history
// @Tags corpus
// @Produce json
// @Success 200 {object} corpus.State
// @Router /v1/state [get]
func (h *CorpusHandler) GetState(c *gin.Context) {
	respondOK(c, h.corpusService.State())
}

// ReplaceState replaces the stored purchase history. Metrics are recomputed.
// @Summary Replace purchase history
// @Tags corpus
// @Accept json
// @Produce json
// @Param state body corpus.State true "Purchase history document"
// @Success 200 {object} corpus.State
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/state [put]
func (h *CorpusHandler) ReplaceState(c *gin.Context) {
	var document corpus.State
	if err := bindJSON(c, &document); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("body", err.Error()))
		return
	}

	state, err := h.corpusService.Replace(c.Request.Context(), document)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, state)
}

// DeletePurchase removes a purchase and its line items
// @Summary Delete a purchase
// @Tags corpus
// @Produce json
// @Param purchaseId path string true "Purchase ID"
// @Success 200 {object} corpus.State
// @Failure 404 {object} model.ErrorResponse "Purchase not found"
// @Router /v1/purchases/{purchaseId} [delete]
func (h *CorpusHandler) DeletePurchase(c *gin.Context) {
	purchaseID, err := getPathParam(c, "purchaseId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	state, err := h.corpusService.RemovePurchase(c.Request.Context(), purchaseID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, state)
}

// ListProducts returns the canonical products
// @Summary List canonical products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Router /v1/products [get]
func (h *CorpusHandler) ListProducts(c *gin.Context) {
	respondOK(c, h.corpusService.State().Products)
}

// CreateProduct adds a canonical product
// @Summary Create a canonical product
// @Tags products
// @Accept json
// @Produce json
// @Param product body model.ProductRequest true "Product name"
// @Success 201 {object} domain.Product
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 409 {object} model.ErrorResponse "Name already taken"
// @Router /v1/products [post]
func (h *CorpusHandler) CreateProduct(c *gin.Context) {
	var input model.ProductRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("name", "Product name is required"))
		return
	}

	product, err := h.corpusService.AddProduct(c.Request.Context(), input.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, product)
}

// RenameProduct changes a canonical product's name
// @Summary Rename a canonical product
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param product body model.ProductRequest true "New name"
// @Success 200 {object} domain.Product
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Product not found"
// @Failure 409 {object} model.ErrorResponse "Name already taken"
// @Router /v1/products/{productId} [put]
func (h *CorpusHandler) RenameProduct(c *gin.Context) {
	productID, err := getPathParam(c, "productId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var input model.ProductRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("name", "Product name is required"))
		return
	}

	state, err := h.corpusService.RenameProduct(c.Request.Context(), productID, input.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	product, _ := state.Product(productID)
	respondOK(c, product)
}

// Associate maps a raw line-item name to a canonical product
// @Summary Associate a raw name
// @Tags associations
// @Accept json
// @Produce json
// @Param association body model.AssociationRequest true "Raw name and product"
// @Success 200 {object} corpus.State
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Product not found"
// @Router /v1/associations [put]
func (h *CorpusHandler) Associate(c *gin.Context) {
	var input model.AssociationRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput,
			newErrorDetail("name", "Raw name is required"),
			newErrorDetail("productId", "Product ID is required"),
		)
		return
	}

	state, err := h.corpusService.Associate(c.Request.Context(), input.Name, input.ProductID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, state)
}

// RemoveAssociation unassigns a raw line-item name
// @Summary Remove an association
// @Tags associations
// @Produce json
// @Param name query string true "Raw name"
// @Success 200 {object} corpus.State
// @Failure 400 {object} model.ErrorResponse "Missing name"
// @Router /v1/associations [delete]
func (h *CorpusHandler) RemoveAssociation(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		respondBadRequest(c, "name is required", newErrorDetail("name", "Raw name is required"))
		return
	}

	state, err := h.corpusService.RemoveAssociation(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, state)
}

// ListUnassigned returns raw names without association and their likely products
// @Summary List unassigned raw names
// @Tags associations
// @Produce json
// @Success 200 {array} corpus.UnassignedName
// @Router /v1/associations/unassigned [get]
func (h *CorpusHandler) ListUnassigned(c *gin.Context) {
	respondOK(c, h.corpusService.Unassigned())
}

// GetMetrics returns per-product metrics in first-seen order
// @Summary Product metrics
// @Tags metrics
// @Produce json
// @Success 200 {array} domain.ProductMetrics
// @Router /v1/metrics [get]
func (h *CorpusHandler) GetMetrics(c *gin.Context) {
	respondOK(c, h.corpusService.Metrics())
}

// GetForecast predicts the products due on the next trip
// @Summary Forecast next purchases
// @Tags metrics
// @Produce json
// @Param currency query string false "Price currency (default: base currency)"
// @Success 200 {object} service.Forecast
// @Failure 400 {object} model.ErrorResponse "Unsupported currency"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/forecast [get]
func (h *CorpusHandler) GetForecast(c *gin.Context) {
	forecast, err := h.corpusService.Forecast(c.Request.Context(), c.Query("currency"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, forecast)
}

// ExportPurchases downloads the purchase history as a workbook
// @Summary Export purchases
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/export/purchases.xlsx [get]
func (h *CorpusHandler) ExportPurchases(c *gin.Context) {
	data, err := h.corpusService.ExportXLSX()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="purchases.xlsx"`)
	c.Data(StatusOK, xlsxContentType, data)
}

// RegisterCorpusRoutes registers purchase history routes
func (h *CorpusHandler) RegisterCorpusRoutes(router *gin.RouterGroup) {
	router.GET("/state", h.GetState)
	router.PUT("/state", h.ReplaceState)
	router.DELETE("/purchases/:purchaseId", h.DeletePurchase)

	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.PUT("/:productId", h.RenameProduct)
	}

	associations := router.Group("/associations")
	{
		associations.PUT("", h.Associate)
		associations.DELETE("", h.RemoveAssociation)
		associations.GET("/unassigned", h.ListUnassigned)
	}

	router.GET("/metrics", h.GetMetrics)
	router.GET("/forecast", h.GetForecast)
	router.GET("/export/purchases.xlsx", h.ExportPurchases)
}
