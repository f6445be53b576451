package repositories

import (
	"context"

	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Lookups return a nil product and a nil error when nothing matches. Create and
// Update fail with *models.ConflictError when the product's code is held by
// another row, active or inactive. Unexpected store failures are returned as
// *models.StorageError.
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetByCode(ctx context.Context, code string, includeInactive bool) (*models.Product, error)
	List(ctx context.Context, includeInactive bool) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
}
