package repository

import (
	"context"
	"errors"

	"github.com/sangkips/velo-register/internal/domain/entity"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"gorm.io/gorm"
)

const catalogBatchSize = 200

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog snapshot repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ReplaceAll(ctx context.Context, products []entity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entity.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, catalogBatchSize).Error
	})
}

func (r *catalogRepository) All(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&products).Error
	return products, err
}

func (r *catalogRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}
