package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, operatorID int64) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Scopes(OperatorScope(operatorID)).
		Where("key = ?", key).
		First(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.upsert(ctx, ikey).Error
}

func (r *idempotencyRepository) upsert(ctx context.Context, ikey *entity.IdempotencyKey) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}, {Name: "operator_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"endpoint", "request_hash", "response_code", "response_body", "expires_at",
		}),
	}).Create(ikey)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&entity.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
