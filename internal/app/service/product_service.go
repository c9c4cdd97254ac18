package service

import (
	"context"
	"errors"
	"strings"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("list products", err)
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("get product", err)
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price.IsNegative() {
		return nil, ErrInvalidProduct
	}

	product := &model.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		ImageURL:    input.ImageURL,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperrors.ParseError(err, "product")
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price.StringFixed(2),
	})
	return product, nil
}
