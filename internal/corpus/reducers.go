package corpus

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/normalizer"
)

// Reducer applies mutations that need fresh identifiers or timestamps
type Reducer struct {
	normalizer *normalizer.Normalizer
	newID      func() string
	now        func() time.Time
}

// Option configures a Reducer
type Option func(*Reducer)

// WithIDGenerator overrides how canonical product ids are generated
func WithIDGenerator(fn func() string) Option {
	return func(r *Reducer) {
		r.newID = fn
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) {
		r.now = now
	}
}

// NewReducer creates a Reducer
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.normalizer = normalizer.New(
		normalizer.WithIDGenerator(r.newID),
		normalizer.WithClock(r.now),
	)
	return r
}

// AddReceipt folds parsed purchases into the corpus, linking each line item to
// a canonical product.
func (r *Reducer) AddReceipt(state State, purchases ...domain.Purchase) (State, error) {
	batch := make(map[string]bool, len(purchases))
	for _, p := range purchases {
		if _, exists := state.Purchase(p.ID); exists || batch[p.ID] {
			return state, fmt.Errorf("%w: %s", ErrDuplicatePurchase, p.ID)
		}
		batch[p.ID] = true
	}

	next := state.clone()
	result := r.normalizer.Normalize(next.Products, next.ProductAssociations, next.UnassignedNames, purchases)

	next.Purchases = append(next.Purchases, purchases...)
	next.Products = result.Products
	next.ProductAssociations = result.Associations
	next.PurchaseProducts = append(next.PurchaseProducts, result.PurchaseProducts...)

	return recompute(next), nil
}

// AddProduct creates a canonical product. Names are compared case-insensitively.
func (r *Reducer) AddProduct(state State, name string) (State, domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return state, domain.Product{}, ErrInvalidName
	}
	if nameTaken(state.Products, name, "") {
		return state, domain.Product{}, ErrDuplicateProductName
	}

	product := domain.Product{
		ProductID: r.newID(),
		Name:      name,
		CreatedAt: r.now().UTC(),
	}

	next := state.clone()
	next.Products = append(next.Products, product)
	return recompute(next), product, nil
}

// RemovePurchase drops a purchase together with its line items
func RemovePurchase(state State, purchaseID string) (State, error) {
	if _, ok := state.Purchase(purchaseID); !ok {
		return state, ErrPurchaseNotFound
	}

	next := state.clone()
	next.Purchases = slices.DeleteFunc(next.Purchases, func(p domain.Purchase) bool {
		return p.ID == purchaseID
	})
	next.PurchaseProducts = slices.DeleteFunc(next.PurchaseProducts, func(pp domain.PurchaseProduct) bool {
		return pp.PurchaseID == purchaseID
	})
	return recompute(next), nil
}

// RenameProduct changes the display name of a canonical product, keeping its id
func RenameProduct(state State, productID, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return state, ErrInvalidName
	}
	if _, ok := state.Product(productID); !ok {
		return state, ErrProductNotFound
	}
	if nameTaken(state.Products, name, productID) {
		return state, ErrDuplicateProductName
	}

	next := state.clone()
	for i := range next.Products {
		if next.Products[i].ProductID == productID {
			next.Products[i].Name = name
		}
	}
	return recompute(next), nil
}

// Associate maps a raw line-item name to a canonical product
func Associate(state State, rawName, productID string) (State, error) {
	if strings.TrimSpace(rawName) == "" {
		return state, ErrInvalidName
	}
	if _, ok := state.Product(productID); !ok {
		return state, ErrProductNotFound
	}

	next := state.clone()
	next.ProductAssociations[rawName] = productID
	next.UnassignedNames = slices.DeleteFunc(next.UnassignedNames, func(name string) bool { return name == rawName })
	for i := range next.PurchaseProducts {
		if next.PurchaseProducts[i].ProductName == rawName {
			next.PurchaseProducts[i].ProductID = productID
		}
	}
	return recompute(next), nil
}

// RemoveAssociation unassigns a raw name. The name stays unassigned when later
// receipts contain it again. Removing an unknown name is a no-op.
func RemoveAssociation(state State, rawName string) State {
	_, associated := state.ProductAssociations[rawName]
	seen := slices.ContainsFunc(state.PurchaseProducts, func(pp domain.PurchaseProduct) bool {
		return pp.ProductName == rawName
	})
	if !associated && !seen {
		return state
	}

	next := state.clone()
	delete(next.ProductAssociations, rawName)
	for i := range next.PurchaseProducts {
		if next.PurchaseProducts[i].ProductName == rawName {
			next.PurchaseProducts[i].ProductID = ""
		}
	}
	if !slices.Contains(next.UnassignedNames, rawName) {
		next.UnassignedNames = append(next.UnassignedNames, rawName)
	}
	return recompute(next)
}

func nameTaken(products []domain.Product, name, exceptID string) bool {
	return slices.ContainsFunc(products, func(p domain.Product) bool {
		return p.ProductID != exceptID && strings.EqualFold(p.Name, name)
	})
}
