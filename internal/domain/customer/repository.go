package customer

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the persistence contract for customer profiles.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	ListAll(ctx context.Context, page, limit int) ([]*Customer, int64, error)
	Save(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
}
