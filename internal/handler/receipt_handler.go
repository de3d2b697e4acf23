package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/service"
)

const receiptFileField = "file"

// ReceiptHandler handles HTTP requests for receipt uploads
type ReceiptHandler struct {
	receiptService service.ReceiptService
	corpusService  *service.CorpusService
	maxUploadBytes int64
	log            *zap.Logger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService service.ReceiptService, corpusService *service.CorpusService, maxUploadBytes int64, log *zap.Logger) *ReceiptHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReceiptHandler{
		receiptService: receiptService,
		corpusService:  corpusService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// ProcessReceipt handles the POST /receipts/process endpoint
// @Summary Parse a receipt PDF
// @Description Upload a supermarket receipt PDF and get the purchase, products and metrics derived from it alone
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt PDF"
// @Success 200 {object} domain.Bundle "Parsed receipt bundle"
// @Failure 400 {object} model.ErrorResponse "No file or unreadable receipt"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/process [post]
func (h *ReceiptHandler) ProcessReceipt(c *gin.Context) {
	pdf, ok := h.readReceipt(c)
	if !ok {
		return
	}

	bundle, err := h.receiptService.ProcessReceipt(c.Request.Context(), pdf)
	if err != nil {
		h.log.Info("receipt rejected", zap.Int("file_size", len(pdf)), zap.Error(err))
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, bundle)
}

// ImportReceipt handles the POST /receipts/import endpoint
// @Summary Import a receipt PDF
// @Description Parse a receipt PDF and add it to the stored purchase history
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt PDF"
// @Success 201 {object} corpus.State "Updated purchase history"
// @Failure 400 {object} model.ErrorResponse "No file or unreadable receipt"
// @Failure 409 {object} model.ErrorResponse "Receipt already imported"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/import [post]
func (h *ReceiptHandler) ImportReceipt(c *gin.Context) {
	pdf, ok := h.readReceipt(c)
	if !ok {
		return
	}

	purchase, err := h.receiptService.ParseReceipt(c.Request.Context(), pdf)
	if err != nil {
		h.log.Info("receipt rejected", zap.Int("file_size", len(pdf)), zap.Error(err))
		respondServiceError(c, h.log, err)
		return
	}

	state, err := h.corpusService.Import(c.Request.Context(), *purchase)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondCreated(c, state)
}

func (h *ReceiptHandler) readReceipt(c *gin.Context) ([]byte, bool) {
	pdf, err := readFormFile(c, receiptFileField, h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			respondBadRequest(c, ErrFileUpload, newErrorDetail(receiptFileField, err.Error()))
			return nil, false
		}
		respondBadRequest(c, err.Error(), newErrorDetail(receiptFileField, "Receipt PDF is required"))
		return nil, false
	}
	if len(pdf) == 0 {
		respondBadRequest(c, ErrFileUpload, newErrorDetail(receiptFileField, "Receipt PDF is empty"))
		return nil, false
	}
	return pdf, true
}

// RegisterReceiptRoutes registers receipt routes
func (h *ReceiptHandler) RegisterReceiptRoutes(router *gin.RouterGroup) {
	receipts := router.Group("/receipts")
	{
		receipts.POST("/process", h.ProcessReceipt)
		receipts.POST("/import", h.ImportReceipt)
	}
}
