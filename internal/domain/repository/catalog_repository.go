package repository

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
)

// CatalogRepository persists the local product snapshot
type CatalogRepository interface {
	// ReplaceAll swaps the stored snapshot for products in one transaction
	ReplaceAll(ctx context.Context, products []entity.Product) error
	// All returns the snapshot ordered by name
	All(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
}
