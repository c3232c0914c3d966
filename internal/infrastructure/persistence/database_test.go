package persistence

import (
	"context"
	"testing"

	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewDatabase(t *testing.T) {
	t.Run("rejects unsupported driver", func(t *testing.T) {
		db, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, nil)

		assert.Nil(t, db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("opens sqlite and migrates store tables", func(t *testing.T) {
		db := setupStoreTestDB(t)

		for _, table := range []string{"orders", "order_lines", "products", "promotions", "product_promotions", "commissions"} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}
	})

	t.Run("applies pool settings", func(t *testing.T) {
		db := setupStoreTestDB(t)

		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	})
}

func TestDatabase_Transaction(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()

	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO products (id, description) VALUES ('1', 'Coffee')`).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.DB.Table("products").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DatabaseDriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
