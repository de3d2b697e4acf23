package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/currency"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/export"
	"github.com/ridwanfathin/market-receipts-service/internal/repository"
)

// CurrencyConverter converts amounts between currencies
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (float64, error)
}

// PricedSuggestion is a forecast suggestion with its price in the requested currency
type PricedSuggestion struct {
	domain.Suggestion
	Currency     string  `json:"currency"`
	Price        float64 `json:"price"`
	DisplayPrice string  `json:"displayPrice"`
}

// Forecast lists the products due on the next trip
type Forecast struct {
	Currency    string             `json:"currency"`
	Suggestions []PricedSuggestion `json:"suggestions"`
}

// CorpusService owns the purchase corpus. Mutations are serialized, persisted
// and only then published to readers.
type CorpusService struct {
	repo         repository.DocumentRepository
	reducer      *corpus.Reducer
	converter    CurrencyConverter
	baseCurrency string
	log          *zap.Logger

	writeMu  sync.Mutex
	snapshot atomic.Pointer[corpus.State]
}

// NewCorpusService creates a CorpusService holding an empty corpus until Load is called
func NewCorpusService(repo repository.DocumentRepository, converter CurrencyConverter, baseCurrency string, log *zap.Logger) *CorpusService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CorpusService{
		repo:         repo,
		reducer:      corpus.NewReducer(),
		converter:    converter,
		baseCurrency: strings.ToUpper(baseCurrency),
		log:          log,
	}
	empty := corpus.Empty()
	s.snapshot.Store(&empty)
	return s
}

// Load reads the persisted corpus, recomputing its metrics. A missing document
// leaves the corpus empty.
func (s *CorpusService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var stored corpus.State
	if err := s.repo.Load(ctx, corpus.DocumentKey, &stored); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			s.log.Info("no stored corpus, starting empty")
			return nil
		}
		return &ServiceError{Op: "load_corpus", Err: err}
	}

	state := corpus.Load(stored)
	s.snapshot.Store(&state)
	s.log.Info("corpus loaded",
		zap.Int("purchases", len(state.Purchases)),
		zap.Int("products", len(state.Products)),
	)
	return nil
}

// State returns the last published corpus
func (s *CorpusService) State() corpus.State {
	return *s.snapshot.Load()
}

// Import folds parsed purchases into the corpus
func (s *CorpusService) Import(ctx context.Context, purchases ...domain.Purchase) (corpus.State, error) {
	return s.mutate(ctx, "import_receipt", func(state corpus.State) (corpus.State, error) {
		return s.reducer.AddReceipt(state, purchases...)
	})
}

// Replace swaps the whole corpus for a client-supplied document. Its metrics are recomputed.
func (s *CorpusService) Replace(ctx context.Context, document corpus.State) (corpus.State, error) {
	return s.mutate(ctx, "replace_corpus", func(corpus.State) (corpus.State, error) {
		return corpus.Load(document), nil
	})
}

// RemovePurchase deletes a purchase and its line items
func (s *CorpusService) RemovePurchase(ctx context.Context, purchaseID string) (corpus.State, error) {
	return s.mutate(ctx, "remove_purchase", func(state corpus.State) (corpus.State, error) {
		return corpus.RemovePurchase(state, purchaseID)
	})
}

// AddProduct creates a canonical product
func (s *CorpusService) AddProduct(ctx context.Context, name string) (domain.Product, error) {
	var product domain.Product
	_, err := s.mutate(ctx, "add_product", func(state corpus.State) (corpus.State, error) {
		next, created, err := s.reducer.AddProduct(state, name)
		product = created
		return next, err
	})
	return product, err
}

// RenameProduct changes a canonical product's display name
func (s *CorpusService) RenameProduct(ctx context.Context, productID, name string) (corpus.State, error) {
	return s.mutate(ctx, "rename_product", func(state corpus.State) (corpus.State, error) {
		return corpus.RenameProduct(state, productID, name)
	})
}

// Associate maps a raw line-item name to a canonical product
func (s *CorpusService) Associate(ctx context.Context, rawName, productID string) (corpus.State, error) {
	return s.mutate(ctx, "associate_product", func(state corpus.State) (corpus.State, error) {
		return corpus.Associate(state, rawName, productID)
	})
}

// RemoveAssociation unassigns a raw line-item name
func (s *CorpusService) RemoveAssociation(ctx context.Context, rawName string) (corpus.State, error) {
	return s.mutate(ctx, "remove_association", func(state corpus.State) (corpus.State, error) {
		return corpus.RemoveAssociation(state, rawName), nil
	})
}

// Unassigned lists raw names without association and their likely products
func (s *CorpusService) Unassigned() []corpus.UnassignedName {
	return corpus.Unassigned(s.State())
}

// Metrics returns product metrics in first-seen order
func (s *CorpusService) Metrics() []domain.ProductMetrics {
	return s.State().Metrics()
}

// Forecast predicts the next trip's products with prices in the requested
// currency. An empty currency means the base currency.
func (s *CorpusService) Forecast(ctx context.Context, targetCurrency string) (*Forecast, error) {
	target := strings.ToUpper(strings.TrimSpace(targetCurrency))
	if target == "" {
		target = s.baseCurrency
	}

	suggestions := corpus.Forecast(s.State())
	result := &Forecast{
		Currency:    target,
		Suggestions: make([]PricedSuggestion, 0, len(suggestions)),
	}

	for _, suggestion := range suggestions {
		price := suggestion.AveragePrice
		if target != s.baseCurrency {
			if s.converter == nil {
				return nil, &ServiceError{Op: "convert_price", Err: currency.ErrUnsupportedCurrency}
			}
			converted, err := s.converter.Convert(ctx, price, s.baseCurrency, target)
			if err != nil {
				return nil, &ServiceError{Op: "convert_price", Err: err}
			}
			price = converted
		}

		result.Suggestions = append(result.Suggestions, PricedSuggestion{
			Suggestion:   suggestion,
			Currency:     target,
			Price:        price,
			DisplayPrice: currency.Format(price, target),
		})
	}

	return result, nil
}

// ExportXLSX renders the corpus as a workbook
func (s *CorpusService) ExportXLSX() ([]byte, error) {
	data, err := export.PurchasesXLSX(s.State())
	if err != nil {
		return nil, &ServiceError{Op: "export_xlsx", Err: err}
	}
	return data, nil
}

// Product looks up a canonical product
func (s *CorpusService) Product(productID string) (domain.Product, bool) {
	return s.State().Product(productID)
}

func (s *CorpusService) mutate(ctx context.Context, op string, fn func(corpus.State) (corpus.State, error)) (corpus.State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.State()
	next, err := fn(current)
	if err != nil {
		return current, &ServiceError{Op: op, Err: err}
	}

	if err := s.repo.Save(ctx, corpus.DocumentKey, next); err != nil {
		s.log.Error("failed to persist corpus", zap.String("op", op), zap.Error(err))
		return current, &ServiceError{Op: op, Err: err}
	}

	s.snapshot.Store(&next)
	s.log.Debug("corpus updated",
		zap.String("op", op),
		zap.Int("purchases", len(next.Purchases)),
		zap.Int("products", len(next.Products)),
	)
	return next, nil
}
