package models

import (
	"github.com/shopspring/decimal"
)

// Dates are kept as text so that a date filter can match a timestamp prefix.

// OrderModel is the persistence model for the orders store
type OrderModel struct {
	StoreModel
	ID         string `gorm:"column:id;type:varchar(64);not null;index"`
	CreatedOn  string `gorm:"column:created_at;type:varchar(32);not null;index"`
	VendorID   string `gorm:"column:vendor_id;type:varchar(64);not null"`
	CustomerID string `gorm:"column:customer_id;type:varchar(64);not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for the order_lines store
type OrderLineModel struct {
	StoreModel
	OrderID            string          `gorm:"column:order_id;type:varchar(64);not null;index"`
	ProductID          string          `gorm:"column:product_id;type:varchar(64);not null"`
	ProductDescription string          `gorm:"column:product_description;type:varchar(255)"`
	ProductPrice       decimal.Decimal `gorm:"column:product_price;type:decimal(18,6);not null"`
	ProductVATRate     decimal.Decimal `gorm:"column:product_vat_rate;type:decimal(18,6);not null"`
	DiscountRate       decimal.Decimal `gorm:"column:discount_rate;type:decimal(18,6);not null"`
	Quantity           decimal.Decimal `gorm:"column:quantity;type:decimal(18,6);not null"`
	FullPriceAmount    decimal.Decimal `gorm:"column:full_price_amount;type:decimal(18,6);not null"`
	DiscountedAmount   decimal.Decimal `gorm:"column:discounted_amount;type:decimal(18,6);not null"`
	VATAmount          decimal.Decimal `gorm:"column:vat_amount;type:decimal(18,6);not null"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:decimal(18,6);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ProductModel is the persistence model for the products store
type ProductModel struct {
	StoreModel
	ID          string `gorm:"column:id;type:varchar(64);not null;index"`
	Description string `gorm:"column:description;type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PromotionModel is the persistence model for the promotions store
type PromotionModel struct {
	StoreModel
	ID          string `gorm:"column:id;type:varchar(64);not null;index"`
	Description string `gorm:"column:description;type:varchar(255)"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ProductPromotionModel is the persistence model for the product_promotions store
type ProductPromotionModel struct {
	StoreModel
	Date        string `gorm:"column:date;type:varchar(32);not null;index"`
	ProductID   string `gorm:"column:product_id;type:varchar(64);not null"`
	PromotionID string `gorm:"column:promotion_id;type:varchar(64);not null"`
}

// TableName returns the table name for GORM
func (ProductPromotionModel) TableName() string {
	return "product_promotions"
}

// VendorCommissionModel is the persistence model for the commissions store
type VendorCommissionModel struct {
	StoreModel
	Date     string          `gorm:"column:date;type:varchar(32);not null;index"`
	VendorID string          `gorm:"column:vendor_id;type:varchar(64);not null"`
	Rate     decimal.Decimal `gorm:"column:rate;type:decimal(18,6);not null"`
}

// TableName returns the table name for GORM
func (VendorCommissionModel) TableName() string {
	return "commissions"
}
