package customer

import (
	"strings"
	"time"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

// CustomerType distinguishes retail households from commercial accounts.
type CustomerType string

const (
	TypeRetail     CustomerType = "RETAIL"
	TypeCommercial CustomerType = "COMMERCIAL"
)

// IsValid returns true if the customer type is recognized.
func (t CustomerType) IsValid() bool {
	return t == TypeRetail || t == TypeCommercial
}

// Customer is a fuel-agency customer profile.
type Customer struct {
	id           uuid.UUID
	fullName     string
	email        string
	mobileNumber string
	address      string
	city         string
	state        string
	pincode      string
	customerType CustomerType
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCustomer creates a new active customer profile.
func NewCustomer(fullName, email, mobileNumber, address, city, state, pincode string, customerType CustomerType) (*Customer, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, domain.NewValidationError("full name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if strings.TrimSpace(mobileNumber) == "" {
		return nil, domain.NewValidationError("mobile number is required")
	}
	if !customerType.IsValid() {
		return nil, domain.NewValidationError("invalid customer type")
	}

	now := time.Now().UTC()
	return &Customer{
		id:           uuid.New(),
		fullName:     fullName,
		email:        email,
		mobileNumber: mobileNumber,
		address:      address,
		city:         city,
		state:        state,
		pincode:      pincode,
		customerType: customerType,
		active:       true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructCustomer rebuilds a Customer from persistence data.
func ReconstructCustomer(
	id uuid.UUID,
	fullName, email, mobileNumber, address, city, state, pincode string,
	customerType CustomerType,
	active bool,
	createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		id:           id,
		fullName:     fullName,
		email:        email,
		mobileNumber: mobileNumber,
		address:      address,
		city:         city,
		state:        state,
		pincode:      pincode,
		customerType: customerType,
		active:       active,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (c *Customer) ID() uuid.UUID              { return c.id }
func (c *Customer) FullName() string           { return c.fullName }
func (c *Customer) Email() string              { return c.email }
func (c *Customer) MobileNumber() string       { return c.mobileNumber }
func (c *Customer) Address() string            { return c.address }
func (c *Customer) City() string               { return c.city }
func (c *Customer) State() string              { return c.state }
func (c *Customer) Pincode() string            { return c.pincode }
func (c *Customer) CustomerType() CustomerType { return c.customerType }
func (c *Customer) IsActive() bool             { return c.active }
func (c *Customer) CreatedAt() time.Time       { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time       { return c.updatedAt }

// UpdateProfile replaces the mutable profile fields.
func (c *Customer) UpdateProfile(fullName, email, mobileNumber, address, city, state, pincode string) error {
	if strings.TrimSpace(fullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	if !strings.Contains(email, "@") {
		return domain.NewValidationError("a valid email is required")
	}
	c.fullName = fullName
	c.email = email
	c.mobileNumber = mobileNumber
	c.address = address
	c.city = city
	c.state = state
	c.pincode = pincode
	c.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate soft-deletes the profile.
func (c *Customer) Deactivate() {
	c.active = false
	c.updatedAt = time.Now().UTC()
}
