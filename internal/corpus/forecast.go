package corpus

import (
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/forecast"
	"github.com/ridwanfathin/market-receipts-service/internal/metrics"
)

// Forecast predicts the products due on the next shopping trip. An empty
// corpus has no suggestions.
func Forecast(state State) []domain.Suggestion {
	cadence, ok := metrics.ShoppingCadence(state.Purchases)
	if !ok {
		return []domain.Suggestion{}
	}
	return forecast.Predict(state.Metrics(), cadence.LastPurchaseDate, cadence.AverageDays)
}
