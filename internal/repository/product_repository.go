package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
)

// ProductModel is the GORM model for the products table.
type ProductModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"uniqueIndex;not null;size:200"`
	FuelType       string    `gorm:"not null;size:10;index"`
	UnitOfMeasure  string    `gorm:"not null;size:20"`
	UnitPriceCents int64     `gorm:"not null"`
	Active         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProductModel) TableName() string {
	return "products"
}

// GormProductRepository is the GORM-based implementation of ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a product by its unique identifier.
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	var model ProductModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Product", id.String())
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return toDomainProduct(&model)
}

// ListAll retrieves all products with pagination.
func (r *GormProductRepository) ListAll(ctx context.Context, page, limit int) ([]*productDomain.Product, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&ProductModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var models []ProductModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*productDomain.Product, len(models))
	for i, m := range models {
		p, err := toDomainProduct(&m)
		if err != nil {
			return nil, 0, err
		}
		products[i] = p
	}
	return products, total, nil
}

// Save persists a new product.
func (r *GormProductRepository) Save(ctx context.Context, p *productDomain.Product) error {
	if err := r.conn(ctx).Create(toProductModel(p)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("product name already exists: %s", p.Name()))
		}
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// Update persists changes to an existing product.
func (r *GormProductRepository) Update(ctx context.Context, p *productDomain.Product) error {
	model := toProductModel(p)
	result := r.conn(ctx).
		Model(&ProductModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"unit_of_measure":  model.UnitOfMeasure,
			"unit_price_cents": model.UnitPriceCents,
			"active":           model.Active,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("product name already exists: %s", p.Name()))
		}
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Product", p.ID().String())
	}
	return nil
}

func toProductModel(p *productDomain.Product) *ProductModel {
	return &ProductModel{
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

func toDomainProduct(m *ProductModel) (*productDomain.Product, error) {
	fuelType, err := domain.ParseFuelType(m.FuelType)
	if err != nil {
		return nil, err
	}
	return productDomain.ReconstructProduct(
		m.ID,
		m.Name,
		fuelType,
		m.UnitOfMeasure,
		m.UnitPriceCents,
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
