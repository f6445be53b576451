package models

import "time"

// Keys accepted in product data mappings and batch columns.
const (
	FieldID          = "id"
	FieldCode        = "code"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCost        = "cost"
	FieldCategory    = "category"
	FieldSupplier    = "supplier"
	FieldIsActive    = "is_active"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

// Product represents an item of the catalog.
// A product is never removed from the store; deletion clears IsActive.
type Product struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code" validate:"max=50"`
	Name        string    `json:"name" validate:"notblank,max=200"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	Cost        float64   `json:"cost" validate:"gte=0"`
	Category    Category  `json:"category"`
	Supplier    string    `json:"supplier"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
