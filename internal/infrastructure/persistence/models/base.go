package models

import (
	"github.com/erp/salesreport/internal/domain/report"
)

// SeqColumn is the load-order column every store table carries
const SeqColumn = "seq"

// StoreModel provides the load-order key shared by every store table
type StoreModel struct {
	Seq uint64 `gorm:"column:seq;primaryKey;autoIncrement"`
}

// ForEntity returns a new empty model for the entity's table
func ForEntity(entity report.EntityType) (any, bool) {
	switch entity {
	case report.EntityOrder:
		return &OrderModel{}, true
	case report.EntityOrderLine:
		return &OrderLineModel{}, true
	case report.EntityProduct:
		return &ProductModel{}, true
	case report.EntityPromotion:
		return &PromotionModel{}, true
	case report.EntityProductPromotion:
		return &ProductPromotionModel{}, true
	case report.EntityVendorCommission:
		return &VendorCommissionModel{}, true
	default:
		return nil, false
	}
}

// All returns one empty model per store table, for migrations
func All() []any {
	out := make([]any, 0, len(report.EntityTypes()))
	for _, entity := range report.EntityTypes() {
		m, _ := ForEntity(entity)
		out = append(out, m)
	}
	return out
}
