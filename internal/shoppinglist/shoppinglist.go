// Package shoppinglist manages shopping lists and favorite products.
package shoppinglist

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

// DocumentKey is the name the lists are persisted under
const DocumentKey = "shopping-lists"

const copySuffix = " (cópia)"

var (
	ErrListNotFound    = errors.New("shopping list not found")
	ErrItemNotFound    = errors.New("item not found on shopping list")
	ErrInvalidName     = errors.New("name must not be blank")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// State is the persisted shopping-list document
type State struct {
	Lists     []domain.ShoppingList `json:"lists"`
	Favorites []string              `json:"favorites"`
}

// Empty returns a state with every collection initialized
func Empty() State {
	return State{Lists: []domain.ShoppingList{}, Favorites: []string{}}
}

// List looks up a list by id
func (s State) List(id string) (domain.ShoppingList, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.ShoppingList{}, false
	}
	return s.Lists[i], true
}

// IsFavorite reports whether the product is marked as favorite
func (s State) IsFavorite(productID string) bool {
	return slices.Contains(s.Favorites, productID)
}

func (s State) indexOf(listID string) int {
	return slices.IndexFunc(s.Lists, func(l domain.ShoppingList) bool { return l.ID == listID })
}

func (s State) clone() State {
	c := State{
		Lists:     make([]domain.ShoppingList, len(s.Lists)),
		Favorites: slices.Clone(s.Favorites),
	}
	for i, l := range s.Lists {
		l.Items = slices.Clone(l.Items)
		c.Lists[i] = l
	}
	if c.Favorites == nil {
		c.Favorites = []string{}
	}
	return c
}

// Reducer applies mutations to a shopping-list State, returning a new State
type Reducer struct {
	newID func() string
	now   func() time.Time
}

// Option configures a Reducer
type Option func(*Reducer)

// WithIDGenerator overrides how list ids are generated
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
	return r
}

// AddList creates an empty list
func (r *Reducer) AddList(state State, name string) (State, domain.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return state, domain.ShoppingList{}, ErrInvalidName
	}

	now := r.now().UTC()
	list := domain.ShoppingList{
		ID:        r.newID(),
		Name:      name,
		Items:     []domain.ShoppingListItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := state.clone()
	next.Lists = append(next.Lists, list)
	return next, list, nil
}

// UpdateListName renames a list
func (r *Reducer) UpdateListName(state State, listID, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return state, ErrInvalidName
	}
	return r.updateList(state, listID, func(l *domain.ShoppingList) error {
		l.Name = name
		return nil
	})
}

// DeleteList removes a list
func (r *Reducer) DeleteList(state State, listID string) (State, error) {
	if state.indexOf(listID) < 0 {
		return state, ErrListNotFound
	}
	next := state.clone()
	next.Lists = slices.DeleteFunc(next.Lists, func(l domain.ShoppingList) bool { return l.ID == listID })
	return next, nil
}

// DuplicateList copies a list with every item unchecked
func (r *Reducer) DuplicateList(state State, listID string) (State, domain.ShoppingList, error) {
	original, ok := state.List(listID)
	if !ok {
		return state, domain.ShoppingList{}, ErrListNotFound
	}

	now := r.now().UTC()
	list := domain.ShoppingList{
		ID:        r.newID(),
		Name:      original.Name + copySuffix,
		Items:     make([]domain.ShoppingListItem, 0, len(original.Items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range original.Items {
		item.Checked = false
		list.Items = append(list.Items, item)
	}

	next := state.clone()
	next.Lists = append(next.Lists, list)
	return next, list, nil
}

// AddItem puts a product on a list. A product already on the list has its
// quantity increased by one instead.
func (r *Reducer) AddItem(state State, listID string, product domain.Product) (State, error) {
	return r.updateList(state, listID, func(l *domain.ShoppingList) error {
		addQuantity(l, product.ProductID, product.Name, 1)
		return nil
	})
}

// RemoveItem takes a product off a list
func (r *Reducer) RemoveItem(state State, listID, productID string) (State, error) {
	return r.updateList(state, listID, func(l *domain.ShoppingList) error {
		before := len(l.Items)
		l.Items = slices.DeleteFunc(l.Items, func(item domain.ShoppingListItem) bool {
			return item.ProductID == productID
		})
		if len(l.Items) == before {
			return ErrItemNotFound
		}
		return nil
	})
}

// UpdateItemQuantity sets the quantity of a product on a list
func (r *Reducer) UpdateItemQuantity(state State, listID, productID string, quantity int) (State, error) {
	if quantity <= 0 {
		return state, ErrInvalidQuantity
	}
	return r.updateItem(state, listID, productID, func(item *domain.ShoppingListItem) {
		item.Quantity = quantity
	})
}

// ToggleItemChecked flips the checked flag of a product on a list
func (r *Reducer) ToggleItemChecked(state State, listID, productID string) (State, error) {
	return r.updateItem(state, listID, productID, func(item *domain.ShoppingListItem) {
		item.Checked = !item.Checked
	})
}

// AddSuggestions adds forecast suggestions to a list with their suggested
// quantity. Products already on the list are left as they are.
func (r *Reducer) AddSuggestions(state State, listID string, suggestions []domain.Suggestion) (State, error) {
	return r.updateList(state, listID, func(l *domain.ShoppingList) error {
		for _, s := range suggestions {
			if hasItem(l, s.ProductID) {
				continue
			}
			quantity := s.SuggestedQuantity
			if quantity <= 0 {
				quantity = 1
			}
			addQuantity(l, s.ProductID, s.Name, quantity)
		}
		return nil
	})
}

// ToggleFavorite marks or unmarks a product as favorite
func ToggleFavorite(state State, productID string) State {
	next := state.clone()
	if next.IsFavorite(productID) {
		next.Favorites = slices.DeleteFunc(next.Favorites, func(id string) bool { return id == productID })
	} else {
		next.Favorites = append(next.Favorites, productID)
	}
	return next
}

func (r *Reducer) updateList(state State, listID string, fn func(*domain.ShoppingList) error) (State, error) {
	i := state.indexOf(listID)
	if i < 0 {
		return state, ErrListNotFound
	}

	next := state.clone()
	if err := fn(&next.Lists[i]); err != nil {
		return state, err
	}
	next.Lists[i].UpdatedAt = r.now().UTC()
	return next, nil
}

func (r *Reducer) updateItem(state State, listID, productID string, fn func(*domain.ShoppingListItem)) (State, error) {
	return r.updateList(state, listID, func(l *domain.ShoppingList) error {
		for i := range l.Items {
			if l.Items[i].ProductID == productID {
				fn(&l.Items[i])
				return nil
			}
		}
		return ErrItemNotFound
	})
}

func hasItem(l *domain.ShoppingList, productID string) bool {
	return slices.ContainsFunc(l.Items, func(item domain.ShoppingListItem) bool {
		return item.ProductID == productID
	})
}

func addQuantity(l *domain.ShoppingList, productID, name string, quantity int) {
	for i := range l.Items {
		if l.Items[i].ProductID == productID {
			l.Items[i].Quantity += quantity
			return
		}
	}
	l.Items = append(l.Items, domain.ShoppingListItem{
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
	})
}
