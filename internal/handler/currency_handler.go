package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/currency"
	"github.com/ridwanfathin/market-receipts-service/internal/model"
)

// CurrencyHandler handles currency-related endpoints
type CurrencyHandler struct {
	currencyClient *currency.Client
	baseCurrency   string
	log            *zap.Logger
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(client *currency.Client, baseCurrency string, log *zap.Logger) *CurrencyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CurrencyHandler{
		currencyClient: client,
		baseCurrency:   strings.ToUpper(baseCurrency),
		log:            log,
	}
}

// GetExchangeRates returns exchange rates for a base currency
// @Summary Get exchange rates
// @Description Get latest exchange rates for a base currency
// @Tags currency
// @Produce json
// @Param base query string false "Base currency (default: configured base currency)"
// @Success 200 {object} currency.ExchangeRates "Exchange rates"
// @Failure 400 {object} model.ErrorResponse "Unsupported currency"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/currency/rates [get]
func (h *CurrencyHandler) GetExchangeRates(c *gin.Context) {
	baseCurrency := c.DefaultQuery("base", h.baseCurrency)

	rates, err := h.currencyClient.GetLatestRates(c.Request.Context(), baseCurrency)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, rates)
}

// ConvertCurrency converts an amount from one currency to another
// @Summary Convert currency
// @Description Convert an amount from one currency to another
// @Tags currency
// @Produce json
// @Param amount query number true "Amount to convert"
// @Param from query string false "Source currency (default: configured base currency)"
// @Param to query string true "Target currency"
// @Success 200 {object} model.ConversionResponse "Conversion result"
// @Failure 400 {object} model.ErrorResponse "Bad request"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/currency/convert [get]
func (h *CurrencyHandler) ConvertCurrency(c *gin.Context) {
	amountStr := c.Query("amount")
	fromCurrency := strings.ToUpper(c.DefaultQuery("from", h.baseCurrency))
	toCurrency := strings.ToUpper(c.Query("to"))

	if amountStr == "" || toCurrency == "" {
		respondBadRequest(c, "amount and to parameters are required")
		return
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		respondBadRequest(c, "Invalid amount", newErrorDetail("amount", "Amount must be a number"))
		return
	}

	convertedAmount, err := h.currencyClient.Convert(c.Request.Context(), amount, fromCurrency, toCurrency)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, model.ConversionResponse{
		Amount:          amount,
		From:            fromCurrency,
		To:              toCurrency,
		ConvertedAmount: convertedAmount,
		Display:         currency.Format(convertedAmount, toCurrency),
	})
}

// GetSupportedCurrencies returns a list of supported currencies
// @Summary Get supported currencies
// @Description Get list of all supported currencies
// @Tags currency
// @Produce json
// @Success 200 {object} model.CurrenciesResponse "List of currencies"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/currency/supported [get]
func (h *CurrencyHandler) GetSupportedCurrencies(c *gin.Context) {
	currencies, err := h.currencyClient.GetSupportedCurrencies(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, model.CurrenciesResponse{Currencies: currencies})
}

// RegisterCurrencyRoutes registers currency routes
func (h *CurrencyHandler) RegisterCurrencyRoutes(router *gin.RouterGroup) {
	currencyGroup := router.Group("/currency")
	{
		currencyGroup.GET("/rates", h.GetExchangeRates)
		currencyGroup.GET("/convert", h.ConvertCurrency)
		currencyGroup.GET("/supported", h.GetSupportedCurrencies)
	}
}
