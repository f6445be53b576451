package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katalog/internal/models"

	"gorm.io/gorm"
)

// productRecord is the row layout of the products table.
type productRecord struct {
	ID          uint    `gorm:"primaryKey"`
	Code        *string `gorm:"size:50;uniqueIndex"`
	Name        string  `gorm:"size:200;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Cost        float64 `gorm:"not null"`
	Category    string  `gorm:"size:50;not null"`
	Supplier    *string `gorm:"size:200"`
	IsActive    bool    `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRecord) TableName() string { return "products" }

func newProductRecord(p *models.Product) productRecord {
	rec := productRecord{ID: p.ID}
	rec.apply(p)
	return rec
}

// apply copies the mutable fields of p. ID and CreatedAt are left alone.
func (rec *productRecord) apply(p *models.Product) {
	rec.Code = nullable(p.Code)
	rec.Name = p.Name
	rec.Description = p.Description
	rec.Price = p.Price
	rec.Cost = p.Cost
	rec.Category = p.Category.Kind.Value()
	rec.Supplier = nullable(p.Supplier)
	rec.IsActive = p.IsActive
}

func (rec *productRecord) toModel() models.Product {
	category, _ := models.ParseCategory(rec.Category)
	return models.Product{
		ID:          rec.ID,
		Code:        deref(rec.Code),
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
		Cost:        rec.Cost,
		Category:    category,
		Supplier:    deref(rec.Supplier),
		IsActive:    rec.IsActive,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GORMProductRepository is a GORM implementation of ProductRepository.
// The handle should be opened with TranslateError so duplicate keys surface
// as gorm.ErrDuplicatedKey.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).Take(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &models.StorageError{Op: fmt.Sprintf("get product %d", id), Err: err}
	}
	p := rec.toModel()
	return &p, nil
}

// GetByCode retrieves the product holding code. Inactive rows are only
// considered when includeInactive is set.
func (r *GORMProductRepository) GetByCode(ctx context.Context, code string, includeInactive bool) (*models.Product, error) {
	if code == "" {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Where("code = ?", code)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rec productRecord
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &models.StorageError{Op: fmt.Sprintf("get product by code %q", code), Err: err}
	}
	p := rec.toModel()
	return &p, nil
}

// List retrieves every product, ordered by ID.
func (r *GORMProductRepository) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Order("id")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var recs []productRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, &models.StorageError{Op: "list products", Err: err}
	}
	products := make([]models.Product, 0, len(recs))
	for i := range recs {
		products = append(products, recs[i].toModel())
	}
	return products, nil
}

// Create inserts product and fills in its ID and timestamps.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	rec := newProductRecord(product)
	rec.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if product.Code != "" {
			taken, err := codeTaken(tx, product.Code, 0)
			if err != nil {
				return err
			}
			if taken {
				return &models.ConflictError{Code: product.Code}
			}
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return translateWriteError("create product", product.Code, err)
	}
	*product = rec.toModel()
	return nil
}

// Update writes every mutable field of product in one transaction.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	var rec productRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&rec, "id = ?", product.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("update product %d: %w", product.ID, models.ErrProductNotFound)
			}
			return err
		}
		if product.Code != "" && product.Code != deref(rec.Code) {
			taken, err := codeTaken(tx, product.Code, product.ID)
			if err != nil {
				return err
			}
			if taken {
				return &models.ConflictError{Code: product.Code}
			}
		}
		rec.apply(product)
		return tx.Save(&rec).Error
	})
	if err != nil {
		return translateWriteError(fmt.Sprintf("update product %d", product.ID), product.Code, err)
	}
	*product = rec.toModel()
	return nil
}

// SoftDelete marks the product inactive. Deleting an inactive product succeeds.
func (r *GORMProductRepository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return false, &models.StorageError{Op: fmt.Sprintf("delete product %d", id), Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

func codeTaken(tx *gorm.DB, code string, exceptID uint) (bool, error) {
	q := tx.Model(&productRecord{}).Where("code = ?", code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func translateWriteError(op, code string, err error) error {
	var conflict *models.ConflictError
	switch {
	case errors.As(err, &conflict):
		return conflict
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &models.ConflictError{Code: code}
	case errors.Is(err, models.ErrProductNotFound):
		return err
	default:
		return &models.StorageError{Op: op, Err: err}
	}
}
