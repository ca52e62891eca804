package repository

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/pkg/pagination"
)

// CheckoutRepository journals checkout attempts
type CheckoutRepository interface {
	Create(ctx context.Context, record *entity.CheckoutRecord) error
	// List returns an operator's records, newest first. If pendingOnly is true
	// only orders still waiting for their documents are returned.
	List(ctx context.Context, operatorID int64, params *pagination.PaginationParams, pendingOnly bool) ([]entity.CheckoutRecord, int64, error)
	// ListWithCursor pages through an operator's records, newest first
	ListWithCursor(ctx context.Context, operatorID int64, params *pagination.CursorParams) ([]entity.CheckoutRecord, error)
}
