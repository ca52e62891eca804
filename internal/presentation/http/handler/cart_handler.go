package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/application/service"
	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/request"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"github.com/sangkips/velo-register/pkg/apperror"
)

// CartHandler handles the operator's cart
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the operator's cart
func (h *CartHandler) Get(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	view, err := h.cartService.Get(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart retrieved successfully", view)
}

// Scan resolves a scanned or typed code and adds the product
func (h *CartHandler) Scan(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	product, view, err := h.cartService.Scan(c.Request.Context(), operatorID, req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, product.Name+" added to cart", gin.H{
		"product": product,
		"cart":    view,
	})
}

// AddItem adds a product picked from the catalog listing
func (h *CartHandler) AddItem(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	view, err := h.cartService.AddProduct(c.Request.Context(), operatorID, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product added to cart", view)
}

// UpdateItem sets the quantity of a line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), operatorID, productID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quantity updated", view)
}

// RemoveItem removes a line. Removing an absent line is not an error.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	view, err := h.cartService.RemoveLine(c.Request.Context(), operatorID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed from cart", view)
}

// SetStore selects the store stock is checked against
func (h *CartHandler) SetStore(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.SelectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	store, err := enum.ParseStore(req.Store)
	if err != nil {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "store", Message: "Unknown store"},
		}))
		return
	}

	view, err := h.cartService.SetStore(c.Request.Context(), operatorID, store)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Store selected", view)
}

// SetClient selects the client the order is for
func (h *CartHandler) SetClient(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.SelectClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	view, err := h.cartService.SetClient(c.Request.Context(), operatorID, entity.ClientRef{
		ID:       req.ID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client selected", view)
}

// ClearClient deselects the client
func (h *CartHandler) ClearClient(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	view, err := h.cartService.ClearClient(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client cleared", view)
}

// SetPayment records the payment method label and installment count
func (h *CartHandler) SetPayment(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	method, err := enum.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "payment_method", Message: "Unknown payment method"},
		}))
		return
	}

	view, err := h.cartService.SetPayment(c.Request.Context(), operatorID, method, req.Installments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment method updated", view)
}

// SetNotes replaces the order notes
func (h *CartHandler) SetNotes(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	view, err := h.cartService.SetNotes(c.Request.Context(), operatorID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notes updated", view)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	view, err := h.cartService.Clear(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", view)
}
