package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/currency"
	"github.com/ridwanfathin/market-receipts-service/internal/model"
	"github.com/ridwanfathin/market-receipts-service/internal/service"
	"github.com/ridwanfathin/market-receipts-service/internal/shoppinglist"
)

// HTTP status codes as constants for consistency
const (
	StatusOK                  = http.StatusOK
	StatusCreated             = http.StatusCreated
	StatusNoContent           = http.StatusNoContent
	StatusBadRequest          = http.StatusBadRequest
	StatusNotFound            = http.StatusNotFound
	StatusConflict            = http.StatusConflict
	StatusInternalServerError = http.StatusInternalServerError
)

// Common error messages
const (
	ErrInvalidInput     = "Invalid input format"
	ErrInternalServer   = "Internal server error"
	ErrFileUpload       = "Failed to upload file"
	ErrFileProcessing   = "Failed to process file"
	ErrReceiptParsing   = "Unable to read receipt"
	ErrResourceNotFound = "Resource not found"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, message string, details ...model.ErrorDetail) {
	response := model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Details: details,
	}
	c.AbortWithStatusJSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, StatusBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string) {
	respondWithError(c, StatusNotFound, message)
}

// respondConflict sends a 409 Conflict response
func respondConflict(c *gin.Context, message string) {
	respondWithError(c, StatusConflict, message)
}

// respondInternalServerError sends a 500 Internal Server Error response
func respondInternalServerError(c *gin.Context, message string) {
	respondWithError(c, StatusInternalServerError, message)
}

// respondOK sends a 200 OK response with data
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(StatusOK, data)
}

// respondCreated sends a 201 Created response with data
func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(StatusCreated, data)
}

// respondNoContent sends a 204 No Content response
func respondNoContent(c *gin.Context) {
	c.Status(StatusNoContent)
}

// newErrorDetail creates a new error detail
func newErrorDetail(field, message string) model.ErrorDetail {
	return model.ErrorDetail{
		Field:   field,
		Message: message,
	}
}

// respondServiceError maps a service failure to a status code. Unknown errors
// are logged and answered with a generic message.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case service.IsUnreadableReceipt(err):
		respondBadRequest(c, ErrReceiptParsing, newErrorDetail("file", err.Error()))
	case errors.Is(err, corpus.ErrPurchaseNotFound),
		errors.Is(err, corpus.ErrProductNotFound),
		errors.Is(err, shoppinglist.ErrListNotFound),
		errors.Is(err, shoppinglist.ErrItemNotFound):
		respondNotFound(c, rootMessage(err))
	case errors.Is(err, corpus.ErrDuplicateProductName),
		errors.Is(err, corpus.ErrDuplicatePurchase):
		respondConflict(c, rootMessage(err))
	case errors.Is(err, corpus.ErrInvalidName),
		errors.Is(err, shoppinglist.ErrInvalidName),
		errors.Is(err, shoppinglist.ErrInvalidQuantity),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		respondBadRequest(c, rootMessage(err))
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondInternalServerError(c, ErrInternalServer)
	}
}

// rootMessage strips the operation prefixes added by the service layer
func rootMessage(err error) string {
	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Err != nil {
		return serviceErr.Err.Error()
	}
	return err.Error()
}
