package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"katalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It follows the same contract as the GORM implementation, including code
// uniqueness across inactive rows.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
		now:      time.Now,
	}
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// GetByCode returns the product holding code.
func (r *MemoryProductRepository) GetByCode(_ context.Context, code string, includeInactive bool) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if code == "" {
		return nil, nil
	}
	for _, p := range r.products {
		if p.Code == code && (includeInactive || p.IsActive) {
			return &p, nil
		}
	}
	return nil, nil
}

// List returns products ordered by ID.
func (r *MemoryProductRepository) List(_ context.Context, includeInactive bool) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if includeInactive || p.IsActive {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.Code != "" && r.codeTaken(product.Code, 0) {
		return &models.ConflictError{Code: product.Code}
	}
	now := r.now()
	stored := *product
	stored.ID = r.nextID
	stored.Category = models.Category{Kind: product.Category.Kind}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.products[stored.ID] = stored
	*product = stored
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("update product %d: %w", product.ID, models.ErrProductNotFound)
	}
	if product.Code != "" && product.Code != current.Code && r.codeTaken(product.Code, product.ID) {
		return &models.ConflictError{Code: product.Code}
	}
	stored := *product
	stored.Category = models.Category{Kind: product.Category.Kind}
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = r.now()
	r.products[stored.ID] = stored
	*product = stored
	return nil
}

// SoftDelete marks a product inactive.
func (r *MemoryProductRepository) SoftDelete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return false, nil
	}
	product.IsActive = false
	product.UpdatedAt = r.now()
	r.products[id] = product
	return true, nil
}

func (r *MemoryProductRepository) codeTaken(code string, exceptID uint) bool {
	for id, p := range r.products {
		if id != exceptID && p.Code == code {
			return true
		}
	}
	return false
}
