package repository

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
)

// CartStore keeps each operator's cart across register restarts
type CartStore interface {
	// Load returns nil, nil when the operator has no stored cart
	Load(ctx context.Context, operatorID int64) (*entity.Cart, error)
	Save(ctx context.Context, operatorID int64, cart *entity.Cart) error
	Delete(ctx context.Context, operatorID int64) error
}
