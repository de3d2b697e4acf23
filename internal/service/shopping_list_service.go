package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/repository"
	"github.com/ridwanfathin/market-receipts-service/internal/shoppinglist"
)

// ShoppingListService owns the shopping lists and favorites document
type ShoppingListService struct {
	repo    repository.DocumentRepository
	corpus  *CorpusService
	reducer *shoppinglist.Reducer
	log     *zap.Logger

	writeMu  sync.Mutex
	snapshot atomic.Pointer[shoppinglist.State]
}

// NewShoppingListService creates a ShoppingListService. Products are looked up in the corpus.
func NewShoppingListService(repo repository.DocumentRepository, corpusService *CorpusService, log *zap.Logger) *ShoppingListService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ShoppingListService{
		repo:    repo,
		corpus:  corpusService,
		reducer: shoppinglist.NewReducer(),
		log:     log,
	}
	empty := shoppinglist.Empty()
	s.snapshot.Store(&empty)
	return s
}

// Load reads the persisted lists. A missing document leaves them empty.
func (s *ShoppingListService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored := shoppinglist.Empty()
	if err := s.repo.Load(ctx, shoppinglist.DocumentKey, &stored); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil
		}
		return &ServiceError{Op: "load_shopping_lists", Err: err}
	}

	s.snapshot.Store(&stored)
	return nil
}

// State returns the last published lists
func (s *ShoppingListService) State() shoppinglist.State {
	return *s.snapshot.Load()
}

// AddList creates an empty list
func (s *ShoppingListService) AddList(ctx context.Context, name string) (domain.ShoppingList, error) {
	var list domain.ShoppingList
	_, err := s.mutate(ctx, "add_list", func(state shoppinglist.State) (shoppinglist.State, error) {
		next, created, err := s.reducer.AddList(state, name)
		list = created
		return next, err
	})
	return list, err
}

// UpdateListName renames a list
func (s *ShoppingListService) UpdateListName(ctx context.Context, listID, name string) (domain.ShoppingList, error) {
	return s.mutateList(ctx, "update_list_name", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.UpdateListName(state, listID, name)
	})
}

// DeleteList removes a list
func (s *ShoppingListService) DeleteList(ctx context.Context, listID string) error {
	_, err := s.mutate(ctx, "delete_list", func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.DeleteList(state, listID)
	})
	return err
}

// DuplicateList copies a list with all items unchecked
func (s *ShoppingListService) DuplicateList(ctx context.Context, listID string) (domain.ShoppingList, error) {
	var list domain.ShoppingList
	_, err := s.mutate(ctx, "duplicate_list", func(state shoppinglist.State) (shoppinglist.State, error) {
		next, created, err := s.reducer.DuplicateList(state, listID)
		list = created
		return next, err
	})
	return list, err
}

// AddItem adds a canonical product to a list
func (s *ShoppingListService) AddItem(ctx context.Context, listID, productID string) (domain.ShoppingList, error) {
	product, ok := s.corpus.Product(productID)
	if !ok {
		return domain.ShoppingList{}, &ServiceError{Op: "add_item", Err: corpus.ErrProductNotFound}
	}
	return s.mutateList(ctx, "add_item", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.AddItem(state, listID, product)
	})
}

// RemoveItem takes a product off a list
func (s *ShoppingListService) RemoveItem(ctx context.Context, listID, productID string) (domain.ShoppingList, error) {
	return s.mutateList(ctx, "remove_item", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.RemoveItem(state, listID, productID)
	})
}

// UpdateItemQuantity sets the quantity of a listed product
func (s *ShoppingListService) UpdateItemQuantity(ctx context.Context, listID, productID string, quantity int) (domain.ShoppingList, error) {
	return s.mutateList(ctx, "update_item_quantity", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.UpdateItemQuantity(state, listID, productID, quantity)
	})
}

// ToggleItemChecked flips the checked flag of a listed product
func (s *ShoppingListService) ToggleItemChecked(ctx context.Context, listID, productID string) (domain.ShoppingList, error) {
	return s.mutateList(ctx, "toggle_item_checked", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.ToggleItemChecked(state, listID, productID)
	})
}

// AddSuggestions fills a list with the current forecast
func (s *ShoppingListService) AddSuggestions(ctx context.Context, listID string) (domain.ShoppingList, error) {
	suggestions := corpus.Forecast(s.corpus.State())
	return s.mutateList(ctx, "add_suggestions", listID, func(state shoppinglist.State) (shoppinglist.State, error) {
		return s.reducer.AddSuggestions(state, listID, suggestions)
	})
}

// ToggleFavorite marks or unmarks a product as favorite
func (s *ShoppingListService) ToggleFavorite(ctx context.Context, productID string) ([]string, error) {
	if _, ok := s.corpus.Product(productID); !ok {
		return nil, &ServiceError{Op: "toggle_favorite", Err: corpus.ErrProductNotFound}
	}
	next, err := s.mutate(ctx, "toggle_favorite", func(state shoppinglist.State) (shoppinglist.State, error) {
		return shoppinglist.ToggleFavorite(state, productID), nil
	})
	if err != nil {
		return nil, err
	}
	return next.Favorites, nil
}

func (s *ShoppingListService) mutateList(ctx context.Context, op, listID string, fn func(shoppinglist.State) (shoppinglist.State, error)) (domain.ShoppingList, error) {
	next, err := s.mutate(ctx, op, fn)
	if err != nil {
		return domain.ShoppingList{}, err
	}
	list, _ := next.List(listID)
	return list, nil
}

func (s *ShoppingListService) mutate(ctx context.Context, op string, fn func(shoppinglist.State) (shoppinglist.State, error)) (shoppinglist.State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.State()
	next, err := fn(current)
	if err != nil {
		return current, &ServiceError{Op: op, Err: err}
	}

	if err := s.repo.Save(ctx, shoppinglist.DocumentKey, next); err != nil {
		s.log.Error("failed to persist shopping lists", zap.String("op", op), zap.Error(err))
		return current, &ServiceError{Op: op, Err: err}
	}

	s.snapshot.Store(&next)
	return next, nil
}
