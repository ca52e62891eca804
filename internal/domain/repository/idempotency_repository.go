package repository

import (
	"context"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
)

// IdempotencyRepository keeps replayable responses keyed per operator
type IdempotencyRepository interface {
	// GetByKey returns nil when the operator never used key
	GetByKey(ctx context.Context, key string, operatorID int64) (*entity.IdempotencyKey, error)
	// Save inserts the key or overwrites an expired entry with the same key
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired purges keys that expired before the given time and
	// reports how many were removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
