package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
)

// CreateCustomerRequest holds the data needed to register a customer.
type CreateCustomerRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number" binding:"required"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	CustomerType string `json:"customer_type" binding:"required"`
}

// UpdateCustomerRequest replaces the mutable profile fields.
type UpdateCustomerRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number" binding:"required"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// CustomerDTO is the response representation of a customer.
type CustomerDTO struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Pincode      string    `json:"pincode,omitempty"`
	CustomerType string    `json:"customer_type"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CustomerService manages customer profiles.
type CustomerService struct {
	repo   customerDomain.CustomerRepository
	cache  *cache.Coordinator
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo customerDomain.CustomerRepository, cacheCoordinator *cache.Coordinator, logger *zap.Logger) *CustomerService {
	return &CustomerService{repo: repo, cache: cacheCoordinator, logger: logger}
}

// CreateCustomer registers a new customer. A duplicate email yields a ConflictError.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerDTO, error) {
	custType := customerDomain.CustomerType(req.CustomerType)
	if !custType.IsValid() {
		return nil, domain.NewValidationError("invalid customer type: " + req.CustomerType)
	}

	cust, err := customerDomain.NewCustomer(
		req.FullName,
		req.Email,
		req.MobileNumber,
		req.Address,
		req.City,
		req.State,
		req.Pincode,
		custType,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindCustomer, cust.ID().String())

	s.logger.Info("customer created",
		zap.String("customer_id", cust.ID().String()),
	)
	result := toCustomerDTO(cust)
	return &result, nil
}

// UpdateCustomer replaces a customer's profile fields.
func (s *CustomerService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := cust.UpdateProfile(
		req.FullName,
		req.Email,
		req.MobileNumber,
		req.Address,
		req.City,
		req.State,
		req.Pincode,
	); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cust); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindCustomer, cust.ID().String())

	result := toCustomerDTO(cust)
	return &result, nil
}

// DeactivateCustomer soft-deletes a customer profile.
func (s *CustomerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return err
	}

	cust.Deactivate()
	if err := s.repo.Update(ctx, cust); err != nil {
		return err
	}

	s.cache.Invalidate(cache.KindCustomer, cust.ID().String())

	s.logger.Info("customer deactivated",
		zap.String("customer_id", cust.ID().String()),
	)
	return nil
}

// GetCustomer retrieves a single customer by ID with cache read-through.
func (s *CustomerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	if cached, ok := s.cache.Get(cache.KindCustomer, customerID.String()); ok {
		if dto, ok := cached.(CustomerDTO); ok {
			return &dto, nil
		}
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := toCustomerDTO(cust)
	s.cache.Put(cache.KindCustomer, customerID.String(), result)
	return &result, nil
}

// ListCustomers returns a paginated list of customers with cache read-through.
func (s *CustomerService) ListCustomers(ctx context.Context, page, limit int) (*domain.PaginatedResult[CustomerDTO], error) {
	if cached, ok := s.cache.GetPage(cache.KindCustomer, page, limit); ok {
		if result, ok := cached.(domain.PaginatedResult[CustomerDTO]); ok {
			return &result, nil
		}
	}

	customers, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, cust := range customers {
		dtos[i] = toCustomerDTO(cust)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	s.cache.PutPage(cache.KindCustomer, page, limit, result)
	return &result, nil
}

func toCustomerDTO(c *customerDomain.Customer) CustomerDTO {
	return CustomerDTO{
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
