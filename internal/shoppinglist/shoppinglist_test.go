package shoppinglist

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestReducer() (*Reducer, *testClock) {
	clock := &testClock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	n := 0
	r := NewReducer(
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("list-%d", n)
		}),
		WithClock(clock.Now),
	)
	return r, clock
}

var (
	rice = domain.Product{ProductID: "rice", Name: "Arroz"}
	milk = domain.Product{ProductID: "milk", Name: "Leite"}
)

func listWithItems(t *testing.T, r *Reducer) (State, string) {
	t.Helper()
	state, list, err := r.AddList(Empty(), "Semana")
	require.NoError(t, err)
	state, err = r.AddItem(state, list.ID, rice)
	require.NoError(t, err)
	state, err = r.AddItem(state, list.ID, milk)
	require.NoError(t, err)
	return state, list.ID
}

func TestAddList(t *testing.T) {
	r, clock := newTestReducer()

	state, list, err := r.AddList(Empty(), "  Mercado do mês ")
	require.NoError(t, err)
	assert.Equal(t, "list-1", list.ID)
	assert.Equal(t, "Mercado do mês", list.Name)
	assert.Empty(t, list.Items)
	assert.Equal(t, clock.now, list.CreatedAt)
	assert.Equal(t, []domain.ShoppingList{list}, state.Lists)

	_, _, err = r.AddList(state, " ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestAddItem_IncrementsExisting(t *testing.T) {
	r, clock := newTestReducer()
	state, listID := listWithItems(t, r)

	clock.advance(time.Hour)
	state, err := r.AddItem(state, listID, rice)
	require.NoError(t, err)

	list, ok := state.List(listID)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Items[0].Quantity)
	assert.Equal(t, 1, list.Items[1].Quantity)
	assert.Equal(t, clock.now, list.UpdatedAt)
	assert.True(t, list.UpdatedAt.After(list.CreatedAt))

	_, err = r.AddItem(state, "missing", rice)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestRemoveItem(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)

	next, err := r.RemoveItem(state, listID, "rice")
	require.NoError(t, err)
	list, _ := next.List(listID)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "milk", list.Items[0].ProductID)

	// previous state untouched
	original, _ := state.List(listID)
	assert.Len(t, original.Items, 2)

	_, err = r.RemoveItem(next, listID, "rice")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItemQuantity(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)

	next, err := r.UpdateItemQuantity(state, listID, "milk", 6)
	require.NoError(t, err)
	list, _ := next.List(listID)
	assert.Equal(t, 6, list.Items[1].Quantity)

	_, err = r.UpdateItemQuantity(state, listID, "milk", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = r.UpdateItemQuantity(state, listID, "coffee", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestToggleItemChecked(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)

	state, err := r.ToggleItemChecked(state, listID, "rice")
	require.NoError(t, err)
	list, _ := state.List(listID)
	assert.True(t, list.Items[0].Checked)

	state, err = r.ToggleItemChecked(state, listID, "rice")
	require.NoError(t, err)
	list, _ = state.List(listID)
	assert.False(t, list.Items[0].Checked)
}

func TestDuplicateList(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)
	state, err := r.ToggleItemChecked(state, listID, "rice")
	require.NoError(t, err)

	state, duplicate, err := r.DuplicateList(state, listID)
	require.NoError(t, err)

	assert.Equal(t, "Semana (cópia)", duplicate.Name)
	assert.NotEqual(t, listID, duplicate.ID)
	assert.Len(t, state.Lists, 2)
	for _, item := range duplicate.Items {
		assert.False(t, item.Checked)
	}

	original, _ := state.List(listID)
	assert.True(t, original.Items[0].Checked)

	_, _, err = r.DuplicateList(state, "missing")
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestUpdateListNameAndDelete(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)

	state, err := r.UpdateListName(state, listID, "Churrasco")
	require.NoError(t, err)
	list, _ := state.List(listID)
	assert.Equal(t, "Churrasco", list.Name)

	_, err = r.UpdateListName(state, listID, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	state, err = r.DeleteList(state, listID)
	require.NoError(t, err)
	assert.Empty(t, state.Lists)

	_, err = r.DeleteList(state, listID)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestAddSuggestions(t *testing.T) {
	r, _ := newTestReducer()
	state, listID := listWithItems(t, r)

	state, err := r.AddSuggestions(state, listID, []domain.Suggestion{
		{ProductID: "rice", Name: "Arroz", SuggestedQuantity: 3},
		{ProductID: "eggs", Name: "Ovos", SuggestedQuantity: 2},
		{ProductID: "bread", Name: "Pão", SuggestedQuantity: 0},
	})
	require.NoError(t, err)

	list, _ := state.List(listID)
	require.Len(t, list.Items, 4)
	assert.Equal(t, 1, list.Items[0].Quantity)
	assert.Equal(t, domain.ShoppingListItem{ProductID: "eggs", Name: "Ovos", Quantity: 2}, list.Items[2])
	assert.Equal(t, 1, list.Items[3].Quantity)
}

func TestToggleFavorite(t *testing.T) {
	state := ToggleFavorite(Empty(), "rice")
	state = ToggleFavorite(state, "milk")
	assert.Equal(t, []string{"rice", "milk"}, state.Favorites)
	assert.True(t, state.IsFavorite("rice"))

	next := ToggleFavorite(state, "rice")
	assert.Equal(t, []string{"milk"}, next.Favorites)
	assert.Equal(t, []string{"rice", "milk"}, state.Favorites)
}
