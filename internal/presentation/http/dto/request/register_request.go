package request

// SessionTokenRequest carries a renewed operator token
type SessionTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ScanRequest is a scanned barcode or typed product code
type ScanRequest struct {
	Token string `json:"token" binding:"required"`
}

// AddItemRequest adds a product picked from the catalog listing
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// UpdateQuantityRequest sets a line quantity. Values below 1 are clamped.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SelectStoreRequest selects the store stock is checked against
type SelectStoreRequest struct {
	Store string `json:"store" binding:"required"`
}

// SelectClientRequest selects an existing client from the directory
type SelectClientRequest struct {
	ID       int64   `json:"id" binding:"required,min=1"`
	FullName string  `json:"full_name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// PaymentRequest records how the client pays
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	Installments  int    `json:"installments"`
}

// NotesRequest replaces the cart notes
type NotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// CheckoutRequest tunes a checkout. The body is optional.
type CheckoutRequest struct {
	SupportsLocalDownload *bool `json:"supports_local_download"`
}

// CheckoutListRequest filters the checkout journal
type CheckoutListRequest struct {
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
	PendingOnly bool   `form:"pending_documents"`
	Cursor      string `form:"cursor"`
	Limit       int    `form:"limit"`
}
