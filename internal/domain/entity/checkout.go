package entity

import (
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/money"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order as sent to the back office
type OrderItem struct {
	ProductID        int64           `json:"product"`
	Quantity         int             `json:"quantity"`
	UnitPriceExclTax decimal.Decimal `json:"unit_price_ht"`
	UnitPriceInclTax decimal.Decimal `json:"unit_price_ttc"`
	TaxRate          decimal.Decimal `json:"tva_rate"`
}

// OrderDraft is the order the register asks the back office to create
type OrderDraft struct {
	ClientID      int64              `json:"client"`
	Store         enum.Store         `json:"store"`
	Items         []OrderItem        `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	Installments  int                `json:"installments"`
	Notes         string             `json:"notes,omitempty"`
}

// NewOrderDraft builds the order payload from a cart that passed CanCheckout
func NewOrderDraft(c *Cart) OrderDraft {
	items := make([]OrderItem, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = OrderItem{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			UnitPriceExclTax: money.Round2(l.Product.PriceExclusiveTax),
			UnitPriceInclTax: money.Round2(l.Product.PriceInclusiveTax),
			TaxRate:          l.Product.TaxRate,
		}
	}
	var clientID int64
	if c.SelectedClient != nil {
		clientID = c.SelectedClient.ID
	}
	return OrderDraft{
		ClientID:      clientID,
		Store:         c.SelectedStore,
		Items:         items,
		PaymentMethod: c.PaymentMethod.BackOfficeValue(),
		Installments:  c.InstallmentCount,
		Notes:         c.Notes,
	}
}

// OrderConfirmation identifies the order and invoice the back office created
type OrderConfirmation struct {
	OrderID       int64  `json:"order_id"`
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// CheckoutResult is the outcome of one checkout run. Order fields are set
// for Success and PartialSuccess; Stage and Reason for PartialSuccess and
// Failure.
type CheckoutResult struct {
	Outcome            enum.CheckoutOutcome `json:"outcome"`
	State              enum.CheckoutState   `json:"state"`
	OrderID            int64                `json:"order_id,omitempty"`
	InvoiceID          int64                `json:"invoice_id,omitempty"`
	InvoiceNumber      string               `json:"invoice_number,omitempty"`
	DocumentsRetrieved bool                 `json:"documents_retrieved"`
	Stage              enum.CheckoutStage   `json:"stage,omitempty"`
	Reason             string               `json:"reason,omitempty"`
	Totals             money.Totals         `json:"totals"`
	Err                error                `json:"-"`
}

// Succeeded builds a Success result
func Succeeded(conf OrderConfirmation, documentsRetrieved bool) CheckoutResult {
	return CheckoutResult{
		Outcome:            enum.OutcomeSuccess,
		State:              enum.CheckoutDone,
		OrderID:            conf.OrderID,
		InvoiceID:          conf.InvoiceID,
		InvoiceNumber:      conf.InvoiceNumber,
		DocumentsRetrieved: documentsRetrieved,
	}
}

// PartiallySucceeded builds a PartialSuccess result: the order exists but
// its documents were not produced or retrieved at stage
func PartiallySucceeded(conf OrderConfirmation, stage enum.CheckoutStage, reason string, err error) CheckoutResult {
	return CheckoutResult{
		Outcome:       enum.OutcomePartialSuccess,
		State:         enum.CheckoutDone,
		OrderID:       conf.OrderID,
		InvoiceID:     conf.InvoiceID,
		InvoiceNumber: conf.InvoiceNumber,
		Stage:         stage,
		Reason:        reason,
		Err:           err,
	}
}

// Failed builds a Failure result. No order exists.
func Failed(stage enum.CheckoutStage, reason string, err error) CheckoutResult {
	return CheckoutResult{
		Outcome: enum.OutcomeFailure,
		State:   enum.CheckoutFailed,
		Stage:   stage,
		Reason:  reason,
		Err:     err,
	}
}

// ReceiptFileName is the local name of the till receipt for an invoice
func ReceiptFileName(invoiceNumber string) string {
	return "ticket_" + invoiceNumber + ".pdf"
}

// InvoiceFileName is the local name of the invoice document
func InvoiceFileName(invoiceNumber string) string {
	return "facture_" + invoiceNumber + ".pdf"
}
