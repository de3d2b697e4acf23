// Package normalizer links parsed line items to canonical products.
package normalizer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

// Result is the outcome of normalizing a batch of purchases against an existing corpus
type Result struct {
	Products         []domain.Product
	Associations     map[string]string
	PurchaseProducts []domain.PurchaseProduct
	Created          []domain.Product
}

// Normalizer assigns canonical products to raw line-item names
type Normalizer struct {
	newID func() string
	now   func() time.Time
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithIDGenerator overrides how canonical product ids are generated
func WithIDGenerator(fn func() string) Option {
	return func(n *Normalizer) {
		n.newID = fn
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves every line item of purchases to a canonical product.
// Names are matched exactly: an existing association wins, then a canonical
// product with the same display name, otherwise a new product is created the
// first time the name is seen. Names listed in unassigned were detached by the
// user and stay without a product. The inputs are not modified.
func (n *Normalizer) Normalize(products []domain.Product, associations map[string]string, unassigned []string, purchases []domain.Purchase) Result {
	result := Result{
		Products:     append([]domain.Product(nil), products...),
		Associations: make(map[string]string, len(associations)),
	}
	for name, productID := range associations {
		result.Associations[name] = productID
	}

	byName := make(map[string]string, len(products))
	for _, product := range products {
		if _, exists := byName[product.Name]; !exists {
			byName[product.Name] = product.ProductID
		}
	}

	detached := make(map[string]bool, len(unassigned))
	for _, name := range unassigned {
		detached[name] = true
	}

	for _, purchase := range purchases {
		for _, item := range purchase.Products {
			if detached[item.Name] {
				result.PurchaseProducts = append(result.PurchaseProducts, JoinLineItem(purchase, item, ""))
				continue
			}

			productID, ok := result.Associations[item.Name]
			if !ok {
				productID, ok = byName[item.Name]
			}
			if !ok {
				created := domain.Product{
					ProductID: n.newID(),
					Name:      item.Name,
					CreatedAt: n.now().UTC(),
				}
				productID = created.ProductID
				byName[item.Name] = productID
				result.Products = append(result.Products, created)
				result.Created = append(result.Created, created)
			}
			result.Associations[item.Name] = productID
			result.PurchaseProducts = append(result.PurchaseProducts, JoinLineItem(purchase, item, productID))
		}
	}

	return result
}

// JoinLineItem flattens a line item together with its purchase and product
func JoinLineItem(purchase domain.Purchase, item domain.LineItem, productID string) domain.PurchaseProduct {
	return domain.PurchaseProduct{
		PurchaseID:        purchase.ID,
		PurchaseProductID: item.ID,
		Date:              purchase.Date,
		ProductName:       item.Name,
		Quantity:          item.Quantity,
		TotalPrice:        item.TotalPrice,
		TotalPriceCents:   ToCents(item.TotalPrice),
		UnitPrice:         item.UnitPrice,
		Weight:            item.Weight,
		PricePerKg:        item.PricePerKg,
		Substituted:       item.Substituted,
		OutOfStock:        item.OutOfStock,
		ProductID:         productID,
	}
}

// ToCents converts a major-unit amount to rounded minor units
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}
