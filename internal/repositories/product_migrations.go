package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// legacySupplierColumn is added in place to databases created before
// products carried a supplier.
const legacySupplierColumn = "supplier"

// MigrateProducts creates the products table when it is missing. For an
// existing table the only change ever applied is adding the supplier column.
func MigrateProducts(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	m := db.WithContext(ctx).Migrator()
	if !m.HasTable(&productRecord{}) {
		if err := m.CreateTable(&productRecord{}); err != nil {
			return fmt.Errorf("failed to create products table: %w", err)
		}
		logger.Info("products table created")
		return nil
	}

	if m.HasColumn(&productRecord{}, legacySupplierColumn) {
		logger.Debug("products table up to date", zap.String("column", legacySupplierColumn))
		return nil
	}

	logger.Info("adding missing column", zap.String("table", "products"), zap.String("column", legacySupplierColumn))
	if err := db.WithContext(ctx).Exec("ALTER TABLE products ADD COLUMN supplier VARCHAR(200)").Error; err != nil {
		return fmt.Errorf("failed to add products.%s: %w", legacySupplierColumn, err)
	}
	return nil
}
