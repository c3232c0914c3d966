package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *Database {
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DatabaseDriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate(context.Background()))
	return db
}

// newMockSQLRowSource creates a SQLRowSource with a mocked postgres connection
func newMockSQLRowSource(t *testing.T) (*SQLRowSource, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewSQLRowSource(gormDB, nil), mock, mockDB
}

func TestSQLRowSource_ReplaceAndReadAll(t *testing.T) {
	db := setupStoreTestDB(t)
	src := NewSQLRowSource(db.DB, nil)
	ctx := context.Background()

	t.Run("rows read back in load order as text", func(t *testing.T) {
		err := src.Replace(ctx, report.EntityOrderLine, []report.Row{
			{
				"order_id": "10", "product_id": "3", "product_description": "Coffee",
				"product_price": "12.5", "product_vat_rate": "0.21", "discount_rate": "0.1",
				"quantity": "2", "full_price_amount": "25", "discounted_amount": "2.5",
				"vat_amount": "4.725", "total_amount": "27.225",
			},
			{
				"order_id": "1", "product_id": "4", "product_description": "Tea",
				"product_price": "3", "product_vat_rate": "0", "discount_rate": "0",
				"quantity": "1", "full_price_amount": "3", "discounted_amount": "0",
				"vat_amount": "0", "total_amount": "3",
			},
		})
		require.NoError(t, err)

		rows, err := src.ReadAll(ctx, report.EntityOrderLine)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "10", rows[0]["order_id"])
		assert.Equal(t, "Coffee", rows[0]["product_description"])
		assert.Equal(t, "12.5", rows[0]["product_price"])
		assert.Equal(t, "27.225", rows[0]["total_amount"])
		assert.Equal(t, "1", rows[1]["order_id"])
		assert.Equal(t, "3", rows[1]["total_amount"])
		_, hasSeq := rows[0]["seq"]
		assert.False(t, hasSeq)
	})

	t.Run("replace clears previous rows and ignores unknown keys", func(t *testing.T) {
		require.NoError(t, src.Replace(ctx, report.EntityVendorCommission, []report.Row{
			{"date": "2019-08-01", "vendor_id": "1", "rate": "0.2"},
		}))
		require.NoError(t, src.Replace(ctx, report.EntityVendorCommission, []report.Row{
			{"date": "2019-08-02", "vendor_id": "2", "rate": "0.15", "note": "ignored"},
		}))

		rows, err := src.ReadAll(ctx, report.EntityVendorCommission)
		require.NoError(t, err)
		assert.Equal(t, []report.Row{{"date": "2019-08-02", "vendor_id": "2", "rate": "0.15"}}, rows)
	})

	t.Run("empty table yields no rows", func(t *testing.T) {
		require.NoError(t, src.Replace(ctx, report.EntityPromotion, nil))

		rows, err := src.ReadAll(ctx, report.EntityPromotion)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("check pings the database", func(t *testing.T) {
		assert.NoError(t, src.Check(ctx))
		assert.NoError(t, db.Ping(ctx))
	})
}

func TestSQLRowSource_MissingTable(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DatabaseDriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLRowSource(db.DB, nil).ReadAll(context.Background(), report.EntityOrder)

	assert.ErrorIs(t, err, report.ErrStoreNotFound)
}

func TestSQLRowSource_ReadAll_Postgres(t *testing.T) {
	t.Run("selects the table in load order", func(t *testing.T) {
		src, mock, mockDB := newMockSQLRowSource(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "orders" ORDER BY seq`).
			WillReturnRows(sqlmock.NewRows([]string{"seq", "id", "created_at", "vendor_id", "customer_id"}).
				AddRow(int64(1), "1", "2019-08-01 10:00:00", "7", "9").
				AddRow(int64(2), "2", "2019-08-01 11:30:00", "8", "9"))

		rows, err := src.ReadAll(context.Background(), report.EntityOrder)

		require.NoError(t, err)
		assert.Equal(t, []report.Row{
			{"id": "1", "created_at": "2019-08-01 10:00:00", "vendor_id": "7", "customer_id": "9"},
			{"id": "2", "created_at": "2019-08-01 11:30:00", "vendor_id": "8", "customer_id": "9"},
		}, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing table", func(t *testing.T) {
		src, mock, mockDB := newMockSQLRowSource(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		_, err := src.ReadAll(context.Background(), report.EntityVendorCommission)

		assert.ErrorIs(t, err, report.ErrStoreNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query errors are wrapped", func(t *testing.T) {
		src, mock, mockDB := newMockSQLRowSource(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY seq`).
			WillReturnError(sql.ErrConnDone)

		_, err := src.ReadAll(context.Background(), report.EntityProduct)

		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Contains(t, err.Error(), "failed to query products")
	})
}

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bytes", []byte("0.25"), "0.25"},
		{"int64", int64(42), "42"},
		{"float64", 0.1, "0.1"},
		{"whole float64", float64(50), "50"},
		{"bool", true, "true"},
		{"date", time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC), "2019-08-01"},
		{"timestamp", time.Date(2019, 8, 1, 9, 5, 0, 0, time.UTC), "2019-08-01 09:05:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toText(tt.in))
		})
	}
}

func TestDialectorFor(t *testing.T) {
	_, err := dialectorFor(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)

	d, err := dialectorFor(&config.DatabaseConfig{Driver: config.DatabaseDriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
