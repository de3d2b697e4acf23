package model

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProductRequest creates or renames a canonical product
type ProductRequest struct {
	Name string `json:"name" binding:"required"`
}

// AssociationRequest maps a raw line-item name to a canonical product
type AssociationRequest struct {
	Name      string `json:"name" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
}

// ShoppingListRequest creates or renames a shopping list
type ShoppingListRequest struct {
	Name string `json:"name" binding:"required"`
}

// ShoppingListItemRequest adds a canonical product to a shopping list
type ShoppingListItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// QuantityRequest sets the quantity of a shopping list item
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// FavoritesResponse lists the favorite product ids
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// ConversionResponse is the result of a currency conversion
type ConversionResponse struct {
	Amount          float64 `json:"amount"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	ConvertedAmount float64 `json:"convertedAmount"`
	Display         string  `json:"display"`
}

// CurrenciesResponse lists the supported currency codes
type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}
