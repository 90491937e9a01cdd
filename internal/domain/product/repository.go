package product

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence contract for products.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListAll(ctx context.Context, page, limit int) ([]*Product, int64, error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
}
