// Package forecast predicts which products will be due on the next shopping trip.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

const minPurchases = 2

type candidate struct {
	metrics domain.ProductMetrics
	dueIn   float64
}

// Predict returns the products whose personal next-due date falls on or before
// the next expected trip, earliest due first.
//
// lastPurchaseDate is the most recent purchase across the whole corpus and
// cadenceDays the average interval between trips. Products need at least two
// purchases and a positive interval to be considered.
func Predict(metrics []domain.ProductMetrics, lastPurchaseDate time.Time, cadenceDays float64) []domain.Suggestion {
	var candidates []candidate
	for _, m := range metrics {
		if !eligible(m) {
			continue
		}
		// Both dates share lastPurchaseDate as origin, so comparing offsets is
		// the same as comparing next-due to the anchor.
		if m.AverageDaysBetweenPurchases > cadenceDays {
			continue
		}
		candidates = append(candidates, candidate{metrics: m, dueIn: m.AverageDaysBetweenPurchases})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dueIn < candidates[j].dueIn
	})

	suggestions := make([]domain.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, suggest(c.metrics, lastPurchaseDate))
	}
	return suggestions
}

func eligible(m domain.ProductMetrics) bool {
	avg := m.AverageDaysBetweenPurchases
	if m.PurchaseCount < minPurchases {
		return false
	}
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return false
	}
	return avg > 0
}

func suggest(m domain.ProductMetrics, reference time.Time) domain.Suggestion {
	roundedDays := int(math.Round(m.AverageDaysBetweenPurchases))

	daysSince := 0
	if last, err := domain.ParseDate(m.LastPurchaseDate); err == nil {
		daysSince = domain.DaysBetween(last, reference)
	}

	return domain.Suggestion{
		ProductID:                   m.ProductID,
		Name:                        m.ProductName,
		DaysSinceLastPurchase:       daysSince,
		AverageDaysBetweenPurchases: roundedDays,
		NextPurchaseDate:            domain.FormatDate(reference.AddDate(0, 0, roundedDays)),
		SuggestedQuantity:           int(math.Ceil(float64(m.Quantity) / float64(m.PurchaseCount))),
		AveragePrice:                math.Round(m.AveragePrice) / 100,
	}
}
