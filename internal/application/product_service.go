package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
)

// CreateProductRequest holds the data needed to add a product to the catalog.
type CreateProductRequest struct {
	Name           string `json:"name" binding:"required"`
	FuelType       string `json:"fuel_type" binding:"required"`
	UnitOfMeasure  string `json:"unit_of_measure" binding:"required"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"required"`
}

// UpdateProductRequest replaces the mutable product fields.
type UpdateProductRequest struct {
	Name           string `json:"name" binding:"required"`
	UnitOfMeasure  string `json:"unit_of_measure" binding:"required"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"required"`
}

// ProductDTO is the response representation of a product.
type ProductDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	FuelType       string    `json:"fuel_type"`
	UnitOfMeasure  string    `json:"unit_of_measure"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductService manages the fuel product catalog.
type ProductService struct {
	repo   productDomain.ProductRepository
	cache  *cache.Coordinator
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo productDomain.ProductRepository, cacheCoordinator *cache.Coordinator, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, cache: cacheCoordinator, logger: logger}
}

// CreateProduct adds a product to the catalog. A duplicate name yields a ConflictError.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	fuelType, err := domain.ParseFuelType(req.FuelType)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	prod, err := productDomain.NewProduct(req.Name, fuelType, req.UnitOfMeasure, req.UnitPriceCents)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, prod); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindProduct, prod.ID().String())

	s.logger.Info("product created",
		zap.String("product_id", prod.ID().String()),
		zap.String("name", prod.Name()),
	)
	result := toProductDTO(prod)
	return &result, nil
}

// UpdateProduct replaces a product's mutable fields.
func (s *ProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	prod, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := prod.UpdateDetails(req.Name, req.UnitOfMeasure, req.UnitPriceCents); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, prod); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindProduct, prod.ID().String())

	result := toProductDTO(prod)
	return &result, nil
}

// DeactivateProduct soft-deletes a product; existing bookings keep their
// reference, but new bookings against it are rejected.
func (s *ProductService) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	prod, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	prod.Deactivate()
	if err := s.repo.Update(ctx, prod); err != nil {
		return err
	}

	s.cache.Invalidate(cache.KindProduct, prod.ID().String())

	s.logger.Info("product deactivated",
		zap.String("product_id", prod.ID().String()),
	)
	return nil
}

// GetProduct retrieves a single product by ID with cache read-through.
func (s *ProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	if cached, ok := s.cache.Get(cache.KindProduct, productID.String()); ok {
		if dto, ok := cached.(ProductDTO); ok {
			return &dto, nil
		}
	}

	prod, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	result := toProductDTO(prod)
	s.cache.Put(cache.KindProduct, productID.String(), result)
	return &result, nil
}

// ListProducts returns a paginated list of products with cache read-through.
func (s *ProductService) ListProducts(ctx context.Context, page, limit int) (*domain.PaginatedResult[ProductDTO], error) {
	if cached, ok := s.cache.GetPage(cache.KindProduct, page, limit); ok {
		if result, ok := cached.(domain.PaginatedResult[ProductDTO]); ok {
			return &result, nil
		}
	}

	products, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDTO, len(products))
	for i, prod := range products {
		dtos[i] = toProductDTO(prod)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	s.cache.PutPage(cache.KindProduct, page, limit, result)
	return &result, nil
}

func toProductDTO(p *productDomain.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID(),
		Name:           p.Name(),
		FuelType:       string(p.FuelType()),
		UnitOfMeasure:  p.UnitOfMeasure(),
		UnitPriceCents: p.UnitPriceCents(),
		Active:         p.IsActive(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}
