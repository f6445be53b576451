package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// requiredCreateFields must all be present in the data given to CreateProduct.
var requiredCreateFields = []string{
	models.FieldCode,
	models.FieldName,
	models.FieldDescription,
	models.FieldPrice,
	models.FieldCost,
	models.FieldCategory,
}

// mutableFields are the keys UpdateProduct applies; any other key is ignored.
var mutableFields = []string{
	models.FieldCode,
	models.FieldName,
	models.FieldDescription,
	models.FieldPrice,
	models.FieldCost,
	models.FieldCategory,
	models.FieldSupplier,
	models.FieldIsActive,
}

var validationMessages = map[string]string{
	"Code.max":      "code cannot exceed 50 characters",
	"Name.notblank": "product name is required",
	"Name.max":      "product name cannot exceed 200 characters",
	"Price.gte":     "price cannot be negative",
	"Cost.gte":      "cost cannot be negative",
}

// ProductService handles business logic related to products. No invalid
// product reaches the repository through it.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	// notblank is registered once here; registration only fails on an empty tag.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &ProductService{
		repo:     repo,
		validate: v,
		logger:   logger.Named("products"),
	}
}

// GetProduct retrieves a product by ID, or nil when none exists.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProductByCode retrieves the active product holding code, or nil.
func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	return s.repo.GetByCode(ctx, code, false)
}

// FindByCode looks code up among all products when includeInactive is set,
// otherwise among active ones.
func (s *ProductService) FindByCode(ctx context.Context, code string, includeInactive bool) (*models.Product, error) {
	return s.repo.GetByCode(ctx, code, includeInactive)
}

// ListProducts retrieves the catalog.
func (s *ProductService) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	return s.repo.List(ctx, includeInactive)
}

// Search returns the active products whose name or code contains term,
// ignoring case.
func (s *ProductService) Search(ctx context.Context, term string) ([]models.Product, error) {
	products, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	matches := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Code), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// CreateProduct builds a product from data and stores it. Every key in
// requiredCreateFields must be present; is_active defaults to true.
func (s *ProductService) CreateProduct(ctx context.Context, data map[string]any) (*models.Product, error) {
	product, err := s.buildProduct(data)
	if err == nil {
		err = s.check(product)
	}
	if err == nil {
		err = s.repo.Create(ctx, product)
	}
	if err != nil {
		s.logger.Error("failed to create product", zap.Any("code", data[models.FieldCode]), zap.Error(err))
		return nil, err
	}
	s.logger.Info("product created", zap.Uint("id", product.ID), zap.String("code", product.Code), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct merges the recognized keys of data into the product and
// stores the result. It returns nil, nil when id is unknown.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, data map[string]any) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load product for update", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if product == nil {
		s.logger.Warn("product to update not found", zap.Uint("id", id))
		return nil, nil
	}

	err = s.applyFields(product, data)
	if err == nil {
		err = s.check(product)
	}
	if err == nil {
		err = s.repo.Update(ctx, product)
	}
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to update product", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("product updated", zap.Uint("id", product.ID), zap.String("code", product.Code), zap.Bool("is_active", product.IsActive))
	return product, nil
}

// DeleteProduct soft-deletes a product. It reports false when id is unknown.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete product", zap.Uint("id", id), zap.Error(err))
		return false, err
	}
	if !deleted {
		s.logger.Warn("product to delete not found", zap.Uint("id", id))
		return false, nil
	}
	s.logger.Info("product deleted", zap.Uint("id", id))
	return true, nil
}

func (s *ProductService) buildProduct(data map[string]any) (*models.Product, error) {
	var missing []string
	for _, field := range requiredCreateFields {
		if _, ok := data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &models.MissingFieldError{Fields: missing}
	}

	product := &models.Product{IsActive: true}
	withDefaults := make(map[string]any, len(data))
	for k, v := range data {
		withDefaults[k] = v
	}
	if _, ok := withDefaults[models.FieldIsActive]; !ok {
		withDefaults[models.FieldIsActive] = true
	}
	if err := s.applyFields(product, withDefaults); err != nil {
		return nil, err
	}
	return product, nil
}

// applyFields sets the recognized mutable keys of data on p, coercing types.
func (s *ProductService) applyFields(p *models.Product, data map[string]any) error {
	var reasons []string
	for _, field := range mutableFields {
		value, ok := data[field]
		if !ok {
			continue
		}
		switch field {
		case models.FieldCode:
			p.Code = TextValue(value)
		case models.FieldName:
			p.Name = TextValue(value)
		case models.FieldDescription:
			p.Description = TextValue(value)
		case models.FieldSupplier:
			p.Supplier = TextValue(value)
		case models.FieldPrice, models.FieldCost:
			if value == nil {
				reasons = append(reasons, fmt.Sprintf("%s is required", field))
				continue
			}
			n, err := cast.ToFloat64E(value)
			if err != nil {
				reasons = append(reasons, fmt.Sprintf("%s must be numeric, got %q", field, TextValue(value)))
				continue
			}
			if field == models.FieldPrice {
				p.Price = n
			} else {
				p.Cost = n
			}
		case models.FieldCategory:
			p.Category = s.category(value)
		case models.FieldIsActive:
			p.IsActive = BoolValue(value)
		}
	}
	if len(reasons) > 0 {
		return &models.ValidationError{Reasons: reasons}
	}
	return nil
}

func (s *ProductService) category(value any) models.Category {
	if c, ok := value.(models.Category); ok {
		return c
	}
	if k, ok := value.(models.CategoryKind); ok {
		return models.Category{Kind: k}
	}
	c, ok := models.ParseCategory(TextValue(value))
	if !ok {
		s.logger.Warn("unknown category, using default",
			zap.String("category", c.Raw),
			zap.String("default", c.Kind.Value()),
		)
	}
	return c
}

// check runs the struct validation rules and aggregates every failure.
func (s *ProductService) check(p *models.Product) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	reasons := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msg, ok := validationMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		}
		reasons = append(reasons, msg)
	}
	return &models.ValidationError{Reasons: reasons}
}
