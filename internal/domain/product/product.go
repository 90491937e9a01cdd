package product

import (
	"strings"
	"time"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

// Product is a sellable fuel product (a cylinder size, a liquid fuel grade).
type Product struct {
	id             uuid.UUID
	name           string
	fuelType       domain.FuelType
	unitOfMeasure  string
	unitPriceCents int64
	active         bool
	createdAt      time.Time
	updatedAt      time.Time
}

// NewProduct creates a new active product.
func NewProduct(name string, fuelType domain.FuelType, unitOfMeasure string, unitPriceCents int64) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("product name is required")
	}
	if !fuelType.IsValid() {
		return nil, domain.NewValidationError("invalid fuel type")
	}
	if strings.TrimSpace(unitOfMeasure) == "" {
		return nil, domain.NewValidationError("unit of measure is required")
	}
	if unitPriceCents <= 0 {
		return nil, domain.NewValidationError("unit price must be positive")
	}

	now := time.Now().UTC()
	return &Product{
		id:             uuid.New(),
		name:           name,
		fuelType:       fuelType,
		unitOfMeasure:  unitOfMeasure,
		unitPriceCents: unitPriceCents,
		active:         true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructProduct rebuilds a Product from persistence data.
func ReconstructProduct(
	id uuid.UUID,
	name string,
	fuelType domain.FuelType,
	unitOfMeasure string,
	unitPriceCents int64,
	active bool,
	createdAt, updatedAt time.Time,
) *Product {
	return &Product{
		id:             id,
		name:           name,
		fuelType:       fuelType,
		unitOfMeasure:  unitOfMeasure,
		unitPriceCents: unitPriceCents,
		active:         active,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (p *Product) ID() uuid.UUID             { return p.id }
func (p *Product) Name() string              { return p.name }
func (p *Product) FuelType() domain.FuelType { return p.fuelType }
func (p *Product) UnitOfMeasure() string     { return p.unitOfMeasure }
func (p *Product) UnitPriceCents() int64     { return p.unitPriceCents }
func (p *Product) IsActive() bool            { return p.active }
func (p *Product) CreatedAt() time.Time      { return p.createdAt }
func (p *Product) UpdatedAt() time.Time      { return p.updatedAt }

// UpdateDetails replaces the mutable product fields.
func (p *Product) UpdateDetails(name, unitOfMeasure string, unitPriceCents int64) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("product name is required")
	}
	if strings.TrimSpace(unitOfMeasure) == "" {
		return domain.NewValidationError("unit of measure is required")
	}
	if unitPriceCents <= 0 {
		return domain.NewValidationError("unit price must be positive")
	}
	p.name = name
	p.unitOfMeasure = unitOfMeasure
	p.unitPriceCents = unitPriceCents
	p.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate soft-deletes the product.
func (p *Product) Deactivate() {
	p.active = false
	p.updatedAt = time.Now().UTC()
}
