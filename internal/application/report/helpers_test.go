package report

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// memorySource is an in-memory report.RowSource that counts reads per store
type memorySource struct {
	stores map[report.EntityType][]report.Row
	reads  map[report.EntityType]int
}

func newMemorySource() *memorySource {
	return &memorySource{
		stores: map[report.EntityType][]report.Row{
			report.EntityOrder:            {},
			report.EntityOrderLine:        {},
			report.EntityProduct:          {},
			report.EntityPromotion:        {},
			report.EntityProductPromotion: {},
			report.EntityVendorCommission: {},
		},
		reads: make(map[report.EntityType]int),
	}
}

func (m *memorySource) ReadAll(_ context.Context, entity report.EntityType) ([]report.Row, error) {
	m.reads[entity]++
	rows, ok := m.stores[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", report.ErrStoreNotFound, entity.StoreName())
	}
	return rows, nil
}

func (m *memorySource) totalReads() int {
	n := 0
	for _, c := range m.reads {
		n += c
	}
	return n
}

func (m *memorySource) addOrder(id, createdAt, vendorID, customerID string) *memorySource {
	m.stores[report.EntityOrder] = append(m.stores[report.EntityOrder], report.Row{
		"id":          id,
		"created_at":  createdAt,
		"vendor_id":   vendorID,
		"customer_id": customerID,
	})
	return m
}

func (m *memorySource) addOrderLine(orderID, productID, discountedAmount, discountRate, totalAmount string) *memorySource {
	m.stores[report.EntityOrderLine] = append(m.stores[report.EntityOrderLine], report.Row{
		"order_id":            orderID,
		"product_id":          productID,
		"product_description": "product " + productID,
		"product_price":       "0",
		"product_vat_rate":    "0",
		"discount_rate":       discountRate,
		"quantity":            "1",
		"full_price_amount":   "0",
		"discounted_amount":   discountedAmount,
		"vat_amount":          "0",
		"total_amount":        totalAmount,
	})
	return m
}

func (m *memorySource) addCommission(date, vendorID, rate string) *memorySource {
	m.stores[report.EntityVendorCommission] = append(m.stores[report.EntityVendorCommission], report.Row{
		"date":      date,
		"vendor_id": vendorID,
		"rate":      rate,
	})
	return m
}

func (m *memorySource) addProductPromotion(date, productID, promotionID string) *memorySource {
	m.stores[report.EntityProductPromotion] = append(m.stores[report.EntityProductPromotion], report.Row{
		"date":         date,
		"product_id":   productID,
		"promotion_id": promotionID,
	})
	return m
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}
