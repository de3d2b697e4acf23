package domain

import "time"

// ShoppingListItem represents a product entry on a shopping list
type ShoppingListItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Checked   bool   `json:"checked"`
}

// ShoppingList represents a named list of products to buy
type ShoppingList struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
