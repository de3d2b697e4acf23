package metrics

import (
	"time"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

// Cadence describes how often shopping trips happen across all purchases
type Cadence struct {
	AverageDays      float64
	LastPurchaseDate time.Time
	Trips            int
}

// ShoppingCadence computes the average number of days between consecutive
// purchases and the date of the latest one. ok is false when no purchase has a
// valid date.
func ShoppingCadence(purchases []domain.Purchase) (Cadence, bool) {
	dates := make([]string, 0, len(purchases))
	for _, p := range purchases {
		dates = append(dates, p.Date)
	}

	sorted := sortedDates(dates)
	if len(sorted) == 0 {
		return Cadence{}, false
	}

	return Cadence{
		AverageDays:      averageInterval(sorted),
		LastPurchaseDate: sorted[len(sorted)-1],
		Trips:            len(sorted),
	}, true
}
