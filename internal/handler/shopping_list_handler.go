package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/model"
	"github.com/ridwanfathin/market-receipts-service/internal/service"
)

// ShoppingListHandler handles shopping lists and favorite products
type ShoppingListHandler struct {
	listService *service.ShoppingListService
	log         *zap.Logger
}

// NewShoppingListHandler creates a new shopping list handler
func NewShoppingListHandler(listService *service.ShoppingListService, log *zap.Logger) *ShoppingListHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShoppingListHandler{
		listService: listService,
		log:         log,
	}
}

// GetLists returns every shopping list and the favorites
// @Summary List shopping lists
// @Tags shopping-lists
// @Produce json
// @Success 200 {object} shoppinglist.State
// @Router /v1/shopping-lists [get]
func (h *ShoppingListHandler) GetLists(c *gin.Context) {
	respondOK(c, h.listService.State())
}

// CreateList creates an empty shopping list
// @Summary Create a shopping list
// @Tags shopping-lists
// @Accept json
// @Produce json
// @Param list body model.ShoppingListRequest true "List name"
// @Success 201 {object} domain.ShoppingList
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Router /v1/shopping-lists [post]
func (h *ShoppingListHandler) CreateList(c *gin.Context) {
	var input model.ShoppingListRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("name", "List name is required"))
		return
	}

	list, err := h.listService.AddList(c.Request.Context(), input.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, list)
}

// RenameList renames a shopping list
// @Summary Rename a shopping list
// @Tags shopping-lists
// @Accept json
// @Produce json
// @Param listId path string true "List ID"
// @Param list body model.ShoppingListRequest true "New name"
// @Success 200 {object} domain.ShoppingList
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "List not found"
// @Router /v1/shopping-lists/{listId} [put]
func (h *ShoppingListHandler) RenameList(c *gin.Context) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var input model.ShoppingListRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("name", "List name is required"))
		return
	}

	list, err := h.listService.UpdateListName(c.Request.Context(), listID, input.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// DeleteList removes a shopping list
// @Summary Delete a shopping list
// @Tags shopping-lists
// @Param listId path string true "List ID"
// @Success 204
// @Failure 404 {object} model.ErrorResponse "List not found"
// @Router /v1/shopping-lists/{listId} [delete]
func (h *ShoppingListHandler) DeleteList(c *gin.Context) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.listService.DeleteList(c.Request.Context(), listID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondNoContent(c)
}

// DuplicateList copies a shopping list with every item unchecked
// @Summary Duplicate a shopping list
// @Tags shopping-lists
// @Produce json
// @Param listId path string true "List ID"
// @Success 201 {object} domain.ShoppingList
// @Failure 404 {object} model.ErrorResponse "List not found"
// @Router /v1/shopping-lists/{listId}/duplicate [post]
func (h *ShoppingListHandler) DuplicateList(c *gin.Context) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	list, err := h.listService.DuplicateList(c.Request.Context(), listID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, list)
}

// AddItem adds a canonical product to a list, or bumps its quantity
// @Summary Add an item
// @Tags shopping-lists
// @Accept json
// @Produce json
// @Param listId path string true "List ID"
// @Param item body model.ShoppingListItemRequest true "Product"
// @Success 200 {object} domain.ShoppingList
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "List or product not found"
// @Router /v1/shopping-lists/{listId}/items [post]
func (h *ShoppingListHandler) AddItem(c *gin.Context) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var input model.ShoppingListItemRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("productId", "Product ID is required"))
		return
	}

	list, err := h.listService.AddItem(c.Request.Context(), listID, input.ProductID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// RemoveItem takes a product off a list
// @Summary Remove an item
// @Tags shopping-lists
// @Produce json
// @Param listId path string true "List ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} domain.ShoppingList
// @Failure 404 {object} model.ErrorResponse "List or item not found"
// @Router /v1/shopping-lists/{listId}/items/{productId} [delete]
func (h *ShoppingListHandler) RemoveItem(c *gin.Context) {
	listID, productID, ok := itemParams(c)
	if !ok {
		return
	}

	list, err := h.listService.RemoveItem(c.Request.Context(), listID, productID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// UpdateItemQuantity sets how many units of a product to buy
// @Summary Update item quantity
// @Tags shopping-lists
// @Accept json
// @Produce json
// @Param listId path string true "List ID"
// @Param productId path string true "Product ID"
// @Param quantity body model.QuantityRequest true "Quantity, greater than zero"
// @Success 200 {object} domain.ShoppingList
// @Failure 400 {object} model.ErrorResponse "Invalid quantity"
// @Failure 404 {object} model.ErrorResponse "List or item not found"
// @Router /v1/shopping-lists/{listId}/items/{productId} [put]
func (h *ShoppingListHandler) UpdateItemQuantity(c *gin.Context) {
	listID, productID, ok := itemParams(c)
	if !ok {
		return
	}

	var input model.QuantityRequest
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("quantity", "Quantity must be greater than zero"))
		return
	}

	list, err := h.listService.UpdateItemQuantity(c.Request.Context(), listID, productID, input.Quantity)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// ToggleItemChecked flips the checked flag of an item
// @Summary Check or uncheck an item
// @Tags shopping-lists
// @Produce json
// @Param listId path string true "List ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} domain.ShoppingList
// @Failure 404 {object} model.ErrorResponse "List or item not found"
// @Router /v1/shopping-lists/{listId}/items/{productId}/toggle [post]
func (h *ShoppingListHandler) ToggleItemChecked(c *gin.Context) {
	listID, productID, ok := itemParams(c)
	if !ok {
		return
	}

	list, err := h.listService.ToggleItemChecked(c.Request.Context(), listID, productID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// AddSuggestions fills a list with the products due on the next trip
// @Summary Add forecast suggestions
// @Tags shopping-lists
// @Produce json
// @Param listId path string true "List ID"
// @Success 200 {object} domain.ShoppingList
// @Failure 404 {object} model.ErrorResponse "List not found"
// @Router /v1/shopping-lists/{listId}/suggestions [post]
func (h *ShoppingListHandler) AddSuggestions(c *gin.Context) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	list, err := h.listService.AddSuggestions(c.Request.Context(), listID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

// ToggleFavorite marks or unmarks a product as favorite
// @Summary Toggle a favorite product
// @Tags favorites
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} model.FavoritesResponse
// @Failure 404 {object} model.ErrorResponse "Product not found"
// @Router /v1/favorites/{productId}/toggle [post]
func (h *ShoppingListHandler) ToggleFavorite(c *gin.Context) {
	productID, err := getPathParam(c, "productId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	favorites, err := h.listService.ToggleFavorite(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, model.FavoritesResponse{Favorites: favorites})
}

func itemParams(c *gin.Context) (string, string, bool) {
	listID, err := getPathParam(c, "listId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return "", "", false
	}
	productID, err := getPathParam(c, "productId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return "", "", false
	}
	return listID, productID, true
}

// RegisterShoppingListRoutes registers shopping list and favorite routes
func (h *ShoppingListHandler) RegisterShoppingListRoutes(router *gin.RouterGroup) {
	lists := router.Group("/shopping-lists")
	{
		lists.GET("", h.GetLists)
		lists.POST("", h.CreateList)
		lists.PUT("/:listId", h.RenameList)
		lists.DELETE("/:listId", h.DeleteList)
		lists.POST("/:listId/duplicate", h.DuplicateList)
		lists.POST("/:listId/suggestions", h.AddSuggestions)
		lists.POST("/:listId/items", h.AddItem)
		lists.PUT("/:listId/items/:productId", h.UpdateItemQuantity)
		lists.DELETE("/:listId/items/:productId", h.RemoveItem)
		lists.POST("/:listId/items/:productId/toggle", h.ToggleItemChecked)
	}

	router.POST("/favorites/:productId/toggle", h.ToggleFavorite)
}
