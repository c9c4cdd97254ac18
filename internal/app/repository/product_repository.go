package repository

import (
	"context"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	CreateInBatches(ctx context.Context, products []model.Product, batchSize int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err)
		return nil, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) CreateInBatches(ctx context.Context, products []model.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk insert products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}
