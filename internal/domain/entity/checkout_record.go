package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutRecord journals one checkout attempt at the register
type CheckoutRecord struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	OperatorID     int64                `gorm:"not null;index" json:"operator_id"`
	Store          enum.Store           `gorm:"size:32;not null" json:"store"`
	ClientID       *int64               `gorm:"index" json:"client_id,omitempty"`
	OrderID        *int64               `gorm:"index" json:"order_id,omitempty"`
	InvoiceID      *int64               `json:"invoice_id,omitempty"`
	InvoiceNumber  *string              `gorm:"size:100" json:"invoice_number,omitempty"`
	Outcome        enum.CheckoutOutcome `gorm:"not null;index" json:"outcome"`
	Stage          enum.CheckoutStage   `gorm:"size:32" json:"stage,omitempty"`
	Reason         string               `gorm:"type:text" json:"reason,omitempty"`
	PaymentMethod  enum.PaymentMethod   `gorm:"size:32" json:"payment_method"`
	Installments   int                  `gorm:"default:1" json:"installments"`
	ItemCount      int                  `gorm:"default:0" json:"item_count"`
	TotalInclusive decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"total_ttc"`
	CreatedAt      time.Time            `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new record
func (r *CheckoutRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CheckoutRecord model
func (CheckoutRecord) TableName() string {
	return "checkout_records"
}

// NeedsDocuments reports whether staff must re-open the order to resend its documents
func (r *CheckoutRecord) NeedsDocuments() bool {
	return r.Outcome == enum.OutcomePartialSuccess
}

// NewCheckoutRecord journals result for the cart that was checked out
func NewCheckoutRecord(operatorID int64, cart *Cart, result CheckoutResult) *CheckoutRecord {
	rec := &CheckoutRecord{
		OperatorID:     operatorID,
		Store:          cart.SelectedStore,
		Outcome:        result.Outcome,
		Stage:          result.Stage,
		Reason:         result.Reason,
		PaymentMethod:  cart.PaymentMethod,
		Installments:   cart.InstallmentCount,
		ItemCount:      cart.ItemCount(),
		TotalInclusive: cart.Totals().Display().Inclusive,
	}
	if cart.SelectedClient != nil {
		id := cart.SelectedClient.ID
		rec.ClientID = &id
	}
	if result.Outcome.OrderCreated() {
		orderID, invoiceID, number := result.OrderID, result.InvoiceID, result.InvoiceNumber
		rec.OrderID = &orderID
		rec.InvoiceID = &invoiceID
		rec.InvoiceNumber = &number
	}
	return rec
}
