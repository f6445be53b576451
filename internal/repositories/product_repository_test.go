package repositories_test

import (
	"context"
	"testing"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a private in-memory SQLite database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func repositoryFactories() map[string]func(t *testing.T) repositories.ProductRepository {
	return map[string]func(t *testing.T) repositories.ProductRepository{
		"memory": func(t *testing.T) repositories.ProductRepository {
			return repositories.NewMemoryProductRepository()
		},
		"gorm": func(t *testing.T) repositories.ProductRepository {
			db := openTestDB(t)
			require.NoError(t, repositories.MigrateProducts(context.Background(), db, zap.NewNop()))
			return repositories.NewGORMProductRepository(db)
		},
	}
}

func newProduct(code, name string) *models.Product {
	return &models.Product{
		Code:     code,
		Name:     name,
		Price:    10,
		Cost:     4,
		Category: models.Category{Kind: models.CategoryFilters},
		IsActive: true,
	}
}

func TestProductRepository_Contract(t *testing.T) {
	for name, factory := range repositoryFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("CreateAndGet", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				p := newProduct("F-1", "Oil filter")
				p.Supplier = "Acme"
				require.NoError(t, repo.Create(ctx, p))
				assert.NotZero(t, p.ID)
				assert.False(t, p.CreatedAt.IsZero())

				byID, err := repo.GetByID(ctx, p.ID)
				require.NoError(t, err)
				require.NotNil(t, byID)
				assert.Equal(t, "Oil filter", byID.Name)
				assert.Equal(t, "Acme", byID.Supplier)
				assert.Equal(t, models.CategoryFilters, byID.Category.Kind)

				byCode, err := repo.GetByCode(ctx, "F-1", false)
				require.NoError(t, err)
				require.NotNil(t, byCode)
				assert.Equal(t, p.ID, byCode.ID)

				missing, err := repo.GetByID(ctx, p.ID+100)
				assert.NoError(t, err)
				assert.Nil(t, missing)
			})

			t.Run("InactiveLookups", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				p := newProduct("OLD", "Old part")
				require.NoError(t, repo.Create(ctx, p))
				deleted, err := repo.SoftDelete(ctx, p.ID)
				require.NoError(t, err)
				assert.True(t, deleted)

				active, err := repo.GetByCode(ctx, "OLD", false)
				require.NoError(t, err)
				assert.Nil(t, active)

				inactive, err := repo.GetByCode(ctx, "OLD", true)
				require.NoError(t, err)
				require.NotNil(t, inactive)
				assert.False(t, inactive.IsActive)

				again, err := repo.SoftDelete(ctx, p.ID)
				require.NoError(t, err)
				assert.True(t, again)

				unknown, err := repo.SoftDelete(ctx, p.ID+100)
				require.NoError(t, err)
				assert.False(t, unknown)
			})

			t.Run("ListOrderAndFilter", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				for _, code := range []string{"A", "B", "C"} {
					require.NoError(t, repo.Create(ctx, newProduct(code, "Product "+code)))
				}
				b, err := repo.GetByCode(ctx, "B", false)
				require.NoError(t, err)
				_, err = repo.SoftDelete(ctx, b.ID)
				require.NoError(t, err)

				active, err := repo.List(ctx, false)
				require.NoError(t, err)
				require.Len(t, active, 2)
				assert.Equal(t, "A", active[0].Code)
				assert.Equal(t, "C", active[1].Code)

				all, err := repo.List(ctx, true)
				require.NoError(t, err)
				assert.Len(t, all, 3)
			})

			t.Run("CodeConflicts", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				first := newProduct("DUP", "First")
				require.NoError(t, repo.Create(ctx, first))
				_, err := repo.SoftDelete(ctx, first.ID)
				require.NoError(t, err)

				err = repo.Create(ctx, newProduct("DUP", "Second"))
				var conflict *models.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, "DUP", conflict.Code)

				other := newProduct("OTHER", "Other")
				require.NoError(t, repo.Create(ctx, other))
				other.Code = "DUP"
				assert.ErrorIs(t, repo.Update(ctx, other), models.ErrConflict)

				stored, err := repo.GetByID(ctx, other.ID)
				require.NoError(t, err)
				assert.Equal(t, "OTHER", stored.Code)
			})

			t.Run("EmptyCodesNeverConflict", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				require.NoError(t, repo.Create(ctx, newProduct("", "Loose one")))
				require.NoError(t, repo.Create(ctx, newProduct("", "Loose two")))

				p, err := repo.GetByCode(ctx, "", true)
				require.NoError(t, err)
				assert.Nil(t, p)
			})

			t.Run("Update", func(t *testing.T) {
				ctx := context.Background()
				repo := factory(t)

				p := newProduct("U-1", "Before")
				require.NoError(t, repo.Create(ctx, p))
				created := p.CreatedAt

				p.Name = "After"
				p.Price = 99.5
				p.Category = models.Category{Kind: models.CategoryTools}
				p.IsActive = false
				require.NoError(t, repo.Update(ctx, p))

				stored, err := repo.GetByID(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, "After", stored.Name)
				assert.Equal(t, 99.5, stored.Price)
				assert.Equal(t, models.CategoryTools, stored.Category.Kind)
				assert.False(t, stored.IsActive)
				assert.True(t, created.Equal(stored.CreatedAt))

				ghost := newProduct("GHOST", "Ghost")
				ghost.ID = p.ID + 100
				assert.ErrorIs(t, repo.Update(ctx, ghost), models.ErrProductNotFound)
			})
		})
	}
}

func TestMigrateProducts_AddsSupplierToLegacyTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.Exec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code VARCHAR(50) UNIQUE,
		name VARCHAR(200) NOT NULL,
		description TEXT,
		price REAL NOT NULL,
		cost REAL NOT NULL,
		category VARCHAR(50) NOT NULL,
		is_active NUMERIC NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO products (code, name, description, price, cost, category, is_active) VALUES ('L-1', 'Legacy', '', 1, 1, 'Herramientas', 1)`,
	).Error)

	require.NoError(t, repositories.MigrateProducts(ctx, db, zap.NewNop()))
	assert.True(t, db.Migrator().HasColumn("products", "supplier"))

	// Running it again is a no-op.
	require.NoError(t, repositories.MigrateProducts(ctx, db, zap.NewNop()))

	repo := repositories.NewGORMProductRepository(db)
	legacy, err := repo.GetByCode(ctx, "L-1", false)
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.Equal(t, "", legacy.Supplier)
	assert.Equal(t, models.CategoryTools, legacy.Category.Kind)

	legacy.Supplier = "Bosch"
	require.NoError(t, repo.Update(ctx, legacy))
	stored, err := repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bosch", stored.Supplier)
}
