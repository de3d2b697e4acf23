// Package metrics derives per-product consumption statistics from purchase line items.
package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

// Table holds product metrics in the order products were first encountered
type Table struct {
	Products []domain.ProductMetrics
}

// ByID returns the metrics keyed by canonical product id
func (t Table) ByID() map[string]domain.ProductMetrics {
	byID := make(map[string]domain.ProductMetrics, len(t.Products))
	for _, m := range t.Products {
		byID[m.ProductID] = m
	}
	return byID
}

type accumulator struct {
	metrics      domain.ProductMetrics
	totalCents   decimal.Decimal
	seenPurchase map[string]bool
	seenVariant  map[string]bool
	dates        []string
}

// Aggregate recomputes metrics for every canonical product from scratch.
// Rows whose name has no association, or whose association points to an
// unknown product, are left out. It never fails: missing data yields zeros.
func Aggregate(purchases []domain.Purchase, rows []domain.PurchaseProduct, associations map[string]string, products []domain.Product) Table {
	productsByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ProductID] = p
	}
	purchaseDates := make(map[string]string, len(purchases))
	for _, p := range purchases {
		purchaseDates[p.ID] = p.Date
	}

	var order []string
	groups := make(map[string]*accumulator)

	for _, row := range rows {
		productID := associations[row.ProductName]
		if productID == "" {
			continue
		}
		product, ok := productsByID[productID]
		if !ok {
			continue
		}

		acc, ok := groups[productID]
		if !ok {
			acc = &accumulator{
				metrics: domain.ProductMetrics{
					ProductID:   productID,
					ProductName: product.Name,
					Purchases:   []string{},
					Variants:    []string{},
				},
				totalCents:   decimal.Zero,
				seenPurchase: make(map[string]bool),
				seenVariant:  make(map[string]bool),
			}
			groups[productID] = acc
			order = append(order, productID)
		}

		acc.totalCents = acc.totalCents.Add(decimal.NewFromFloat(row.TotalPrice).Shift(2))
		acc.metrics.Quantity += row.Quantity

		if !acc.seenPurchase[row.PurchaseID] {
			acc.seenPurchase[row.PurchaseID] = true
			acc.metrics.Purchases = append(acc.metrics.Purchases, row.PurchaseID)
			date, ok := purchaseDates[row.PurchaseID]
			if !ok {
				date = row.Date
			}
			acc.dates = append(acc.dates, date)
		}
		if !acc.seenVariant[row.ProductName] {
			acc.seenVariant[row.ProductName] = true
			acc.metrics.Variants = append(acc.metrics.Variants, row.ProductName)
		}
	}

	table := Table{Products: make([]domain.ProductMetrics, 0, len(order))}
	for _, productID := range order {
		acc := groups[productID]
		m := acc.metrics
		m.TotalInCents = acc.totalCents.Round(0).IntPart()
		m.PurchaseCount = len(m.Purchases)
		if m.Quantity != 0 {
			m.AveragePrice = float64(m.TotalInCents) / float64(m.Quantity)
		}

		sorted := sortedDates(acc.dates)
		m.AverageDaysBetweenPurchases = averageInterval(sorted)
		if len(sorted) > 0 {
			m.LastPurchaseDate = domain.FormatDate(sorted[len(sorted)-1])
		}
		table.Products = append(table.Products, m)
	}

	return table
}

// sortedDates parses dates and sorts them ascending, keeping encounter order
// for equal dates. Unparseable dates are dropped.
func sortedDates(dates []string) []time.Time {
	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := domain.ParseDate(d)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Before(parsed[j])
	})
	return parsed
}

// averageInterval is the mean of consecutive day deltas between sorted dates,
// divided over the distinct dates. Fewer than two distinct dates yields 0.
func averageInterval(sorted []time.Time) float64 {
	distinct := 0
	var sumDays float64
	for i, t := range sorted {
		if i == 0 || !t.Equal(sorted[i-1]) {
			distinct++
		}
		if i > 0 {
			sumDays += t.Sub(sorted[i-1]).Hours() / 24
		}
	}
	if distinct < 2 {
		return 0
	}
	return sumDays / float64(distinct-1)
}
