package repository

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/pagination"
	"gorm.io/gorm"
)

type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository creates a new checkout journal repository
func NewCheckoutRepository(db *gorm.DB) domainRepo.CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, record *entity.CheckoutRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *checkoutRepository) List(ctx context.Context, operatorID int64, params *pagination.PaginationParams, pendingOnly bool) ([]entity.CheckoutRecord, int64, error) {
	var records []entity.CheckoutRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CheckoutRecord{}).
		Scopes(OperatorScope(operatorID))
	if pendingOnly {
		query = query.Scopes(PendingDocumentsScope)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC, id DESC").
		Find(&records).Error

	return records, total, err
}

// ListWithCursor fetches limit+1 rows so the caller can detect another page
func (r *checkoutRepository) ListWithCursor(ctx context.Context, operatorID int64, params *pagination.CursorParams) ([]entity.CheckoutRecord, error) {
	var records []entity.CheckoutRecord

	params.Validate()
	query := r.db.WithContext(ctx).Model(&entity.CheckoutRecord{}).
		Scopes(OperatorScope(operatorID))

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}

	order := "created_at DESC, id DESC"
	if cursor != nil {
		if params.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
			order = "created_at ASC, id ASC"
		}
	}

	err = query.Limit(params.Limit + 1).Order(order).Find(&records).Error
	if err != nil {
		return nil, err
	}

	if params.Direction == pagination.CursorDirectionPrev {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, nil
}
