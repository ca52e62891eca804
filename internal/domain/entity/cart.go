package entity

import (
	"net/http"
	"time"

	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/money"
	"github.com/shopspring/decimal"
)

// ErrItemNotInCart is returned when a quantity change targets a product that has no line
var ErrItemNotInCart = &apperror.AppError{Code: http.StatusNotFound, Kind: apperror.KindNotFound, Message: "Item not in cart"}

// CartLine is one product in the cart. There is at most one line per product.
type CartLine struct {
	ProductID int64   `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// Pricing returns the money input for this line
func (l *CartLine) Pricing() money.Line {
	return money.Line{
		UnitInclusive: l.Product.PriceInclusiveTax,
		UnitExclusive: l.Product.PriceExclusiveTax,
		Quantity:      l.Quantity,
	}
}

// Cart is the in-progress sale of one operator session
type Cart struct {
	Lines            []CartLine         `json:"lines"`
	SelectedStore    enum.Store         `json:"selected_store"`
	SelectedClient   *ClientRef         `json:"selected_client,omitempty"`
	PaymentMethod    enum.PaymentMethod `json:"payment_method"`
	InstallmentCount int                `json:"installment_count"`
	Notes            string             `json:"notes,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewCart returns an empty cash cart for store
func NewCart(store enum.Store) *Cart {
	return &Cart{
		Lines:            []CartLine{},
		SelectedStore:    store,
		PaymentMethod:    enum.PaymentCash,
		InstallmentCount: 1,
		UpdatedAt:        time.Now(),
	}
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

// Line returns the line holding productID, if any
func (c *Cart) Line(productID int64) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// AddProduct increments the existing line for p or appends a new line with
// quantity 1. Stock is not checked here.
func (c *Cart) AddProduct(p Product) {
	defer c.touch()
	if i := c.indexOf(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: p.ID, Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity of an existing line. Values below 1 are
// clamped to 1; removing a line goes through RemoveLine.
func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotInCart
	}
	if quantity < 1 {
		quantity = 1
	}
	c.Lines[i].Quantity = quantity
	c.touch()
	return nil
}

// RemoveLine drops the line for productID. Absent products are ignored.
func (c *Cart) RemoveLine(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		c.touch()
	}
}

// SetStore changes the selling store. Existing lines are not re-checked
// against the new store's stock.
func (c *Cart) SetStore(store enum.Store) error {
	if !store.IsValid() {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "store", Message: "Unknown store"},
		})
	}
	c.SelectedStore = store
	c.touch()
	return nil
}

func (c *Cart) SetClient(ref ClientRef) {
	c.SelectedClient = &ref
	c.touch()
}

func (c *Cart) ClearClient() {
	c.SelectedClient = nil
	c.touch()
}

// SetPayment records the payment label. Installment plans take 2 to 4
// payments; every other method is a single payment.
func (c *Cart) SetPayment(method enum.PaymentMethod, installments int) error {
	if !method.IsValid() {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "payment_method", Message: "Unknown payment method"},
		})
	}
	if method != enum.PaymentInstallment {
		installments = 1
	} else if installments < enum.MinInstallments || installments > enum.MaxInstallments {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "installments", Message: "Installment plans take between 2 and 4 payments"},
		})
	}
	c.PaymentMethod = method
	c.InstallmentCount = installments
	c.touch()
	return nil
}

func (c *Cart) SetNotes(notes string) {
	c.Notes = notes
	c.touch()
}

// Clear empties the cart after a sale. The selected store is kept.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.SelectedClient = nil
	c.PaymentMethod = enum.PaymentCash
	c.InstallmentCount = 1
	c.Notes = ""
	c.touch()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount returns the number of units across all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// CanCheckout reports why the cart cannot be turned into an order yet
func (c *Cart) CanCheckout() error {
	var fieldErrors []apperror.FieldError
	if c.SelectedClient == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "client", Message: "Please select a client"})
	}
	if c.IsEmpty() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "lines", Message: "The cart is empty"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// Totals returns the unrounded totals of the cart
func (c *Cart) Totals() money.Totals {
	lines := make([]money.Line, len(c.Lines))
	for i := range c.Lines {
		lines[i] = c.Lines[i].Pricing()
	}
	return money.Sum(lines)
}

// Installments returns the payment schedule for the current payment method
func (c *Cart) Installments() []decimal.Decimal {
	return money.Installments(c.Totals().Inclusive, c.InstallmentCount)
}

// Snapshot returns a deep copy that later mutations of c do not affect
func (c *Cart) Snapshot() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	for i, l := range c.Lines {
		l.Product = l.Product.clone()
		cp.Lines[i] = l
	}
	if c.SelectedClient != nil {
		ref := *c.SelectedClient
		cp.SelectedClient = &ref
	}
	return &cp
}
