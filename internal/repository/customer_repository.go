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
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName     string    `gorm:"not null;size:200"`
	Email        string    `gorm:"uniqueIndex;not null;size:200"`
	MobileNumber string    `gorm:"not null;size:20"`
	Address      string    `gorm:"size:500"`
	City         string    `gorm:"size:100"`
	State        string    `gorm:"size:100"`
	Pincode      string    `gorm:"size:10"`
	CustomerType string    `gorm:"not null;size:20"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerRepository is the GORM-based implementation of CustomerRepository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a customer by its unique identifier.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// FindByEmail retrieves a customer by email.
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.conn(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", email)
		}
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// ListAll retrieves all customers with pagination.
func (r *GormCustomerRepository) ListAll(ctx context.Context, page, limit int) ([]*customerDomain.Customer, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&CustomerModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var models []CustomerModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]*customerDomain.Customer, len(models))
	for i, m := range models {
		customers[i] = toDomainCustomer(&m)
	}
	return customers, total, nil
}

// Save persists a new customer.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	if err := r.conn(ctx).Create(toCustomerModel(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("customer email already registered: %s", c.Email()))
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// Update persists changes to an existing customer.
func (r *GormCustomerRepository) Update(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	result := r.conn(ctx).
		Model(&CustomerModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"full_name":     model.FullName,
			"email":         model.Email,
			"mobile_number": model.MobileNumber,
			"address":       model.Address,
			"city":          model.City,
			"state":         model.State,
			"pincode":       model.Pincode,
			"active":        model.Active,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("customer email already registered: %s", c.Email()))
		}
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Customer", c.ID().String())
	}
	return nil
}

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:           c.ID(),
		FullName:     c.FullName(),
		Email:        c.Email(),
		MobileNumber: c.MobileNumber(),
		Address:      c.Address(),
		City:         c.City(),
		State:        c.State(),
		Pincode:      c.Pincode(),
		CustomerType: string(c.CustomerType()),
		Active:       c.IsActive(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toDomainCustomer(m *CustomerModel) *customerDomain.Customer {
	return customerDomain.ReconstructCustomer(
		m.ID,
		m.FullName,
		m.Email,
		m.MobileNumber,
		m.Address,
		m.City,
		m.State,
		m.Pincode,
		customerDomain.CustomerType(m.CustomerType),
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
