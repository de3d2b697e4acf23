// Package corpus holds the purchase corpus document and the reducers that mutate it.
//
// Every reducer takes a State and returns a new State with product metrics
// recomputed from scratch. Input states are never modified.
package corpus

import (
	"errors"
	"maps"
	"slices"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/metrics"
)

// DocumentKey is the name the corpus is persisted under
const DocumentKey = "purchases"

var (
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrDuplicatePurchase    = errors.New("purchase already imported")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProductName = errors.New("a product with this name already exists")
	ErrInvalidName          = errors.New("name must not be blank")
)

// State is the single shared purchase document
type State struct {
	Purchases           []domain.Purchase                `json:"purchases"`
	Products            []domain.Product                 `json:"products"`
	PurchaseProducts    []domain.PurchaseProduct         `json:"purchaseProducts"`
	ProductMetrics      map[string]domain.ProductMetrics `json:"productMetrics"`
	ProductAssociations map[string]string                `json:"productAssociations"`
	// raw names the user detached from their product
	UnassignedNames     []string                         `json:"unassignedNames,omitempty"`
}

// Empty returns a state with every collection initialized
func Empty() State {
	return State{
		Purchases:           []domain.Purchase{},
		Products:            []domain.Product{},
		PurchaseProducts:    []domain.PurchaseProduct{},
		ProductMetrics:      map[string]domain.ProductMetrics{},
		ProductAssociations: map[string]string{},
	}
}

// Load prepares a persisted document for use. Persisted metrics are discarded
// and rebuilt from the line items.
func Load(state State) State {
	return recompute(state.clone())
}

// Bundle exposes the state in the shape returned by the parse pipeline
func (s State) Bundle() domain.Bundle {
	return domain.Bundle{
		Purchases:        s.Purchases,
		Products:         s.Products,
		PurchaseProducts: s.PurchaseProducts,
		ProductMetrics:   s.ProductMetrics,
	}
}

// Metrics returns product metrics in the order products were first seen
func (s State) Metrics() []domain.ProductMetrics {
	return metrics.Aggregate(s.Purchases, s.PurchaseProducts, s.ProductAssociations, s.Products).Products
}

// Purchase looks up a purchase by id
func (s State) Purchase(id string) (domain.Purchase, bool) {
	i := slices.IndexFunc(s.Purchases, func(p domain.Purchase) bool { return p.ID == id })
	if i < 0 {
		return domain.Purchase{}, false
	}
	return s.Purchases[i], true
}

// Product looks up a canonical product by id
func (s State) Product(id string) (domain.Product, bool) {
	i := slices.IndexFunc(s.Products, func(p domain.Product) bool { return p.ProductID == id })
	if i < 0 {
		return domain.Product{}, false
	}
	return s.Products[i], true
}

func (s State) clone() State {
	c := State{
		Purchases:           slices.Clone(s.Purchases),
		Products:            slices.Clone(s.Products),
		PurchaseProducts:    slices.Clone(s.PurchaseProducts),
		ProductAssociations: maps.Clone(s.ProductAssociations),
		UnassignedNames:     slices.Clone(s.UnassignedNames),
	}
	if c.Purchases == nil {
		c.Purchases = []domain.Purchase{}
	}
	if c.Products == nil {
		c.Products = []domain.Product{}
	}
	if c.PurchaseProducts == nil {
		c.PurchaseProducts = []domain.PurchaseProduct{}
	}
	if c.ProductAssociations == nil {
		c.ProductAssociations = map[string]string{}
	}
	return c
}

func recompute(state State) State {
	state.ProductMetrics = metrics.Aggregate(
		state.Purchases,
		state.PurchaseProducts,
		state.ProductAssociations,
		state.Products,
	).ByID()
	return state
}
