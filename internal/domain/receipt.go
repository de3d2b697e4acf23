package domain

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used for purchases and forecasts
const DateLayout = "2006-01-02"

// LineItem represents one product entry printed on a receipt
type LineItem struct {
	ID          string   `json:"id"`
	PurchaseID  string   `json:"purchaseId"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	TotalPrice  float64  `json:"totalPrice"`
	Weight      *float64 `json:"weight"`
	PricePerKg  *float64 `json:"pricePerKg"`
	Substituted *string  `json:"substituted"`
	OutOfStock  bool     `json:"outOfStock"`
}

// Purchase represents one parsed receipt
type Purchase struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"`
	Total    float64    `json:"total"`
	Products []LineItem `json:"products"`
}

// PurchaseProduct is a line item joined with its purchase and canonical product
type PurchaseProduct struct {
	PurchaseID        string   `json:"purchaseId"`
	PurchaseProductID string   `json:"purchaseProductId"`
	Date              string   `json:"date"`
	ProductName       string   `json:"productName"`
	Quantity          int      `json:"quantity"`
	TotalPrice        float64  `json:"totalPrice"`
	TotalPriceCents   int64    `json:"totalPriceCents"`
	UnitPrice         *float64 `json:"unitPrice"`
	Weight            *float64 `json:"weight"`
	PricePerKg        *float64 `json:"pricePerKg"`
	Substituted       *string  `json:"substituted"`
	OutOfStock        bool     `json:"outOfStock"`
	ProductID         string   `json:"productId"`
}

// Product is a canonical product that raw line-item names are associated with
type Product struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductMetrics holds statistics derived from every line item associated with a product
type ProductMetrics struct {
	ProductID                   string   `json:"productId"`
	ProductName                 string   `json:"productName"`
	TotalInCents                int64    `json:"totalInCents"`
	Quantity                    int      `json:"quantity"`
	Purchases                   []string `json:"purchases"`
	PurchaseCount               int      `json:"purchaseCount"`
	AveragePrice                float64  `json:"averagePrice"`
	AverageDaysBetweenPurchases float64  `json:"averageDaysBetweenPurchases"`
	Variants                    []string `json:"variants"`
	LastPurchaseDate            string   `json:"lastPurchaseDate,omitempty"`
}

// Suggestion is a product predicted to be due on the next shopping trip
type Suggestion struct {
	ProductID                   string  `json:"productId"`
	Name                        string  `json:"name"`
	DaysSinceLastPurchase       int     `json:"daysSinceLastPurchase"`
	AverageDaysBetweenPurchases int     `json:"averageDaysBetweenPurchases"`
	NextPurchaseDate            string  `json:"nextPurchaseDate"`
	SuggestedQuantity           int     `json:"suggestedQuantity"`
	AveragePrice                float64 `json:"averagePrice"`
}

// Bundle is the full pipeline output for one or more receipts
type Bundle struct {
	Purchases        []Purchase                `json:"purchases"`
	Products         []Product                 `json:"products"`
	PurchaseProducts []PurchaseProduct         `json:"purchaseProducts"`
	ProductMetrics   map[string]ProductMetrics `json:"productMetrics"`
}

// ParseDate parses a purchase date in YYYY-MM-DD format
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatDate formats a time as a purchase date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
