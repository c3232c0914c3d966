package report

import "context"

// EntityType identifies one of the record stores the daily report is built from.
// The set is closed; use ParseEntityType to convert a name into a value.
type EntityType int

const (
	EntityOrder EntityType = iota + 1
	EntityOrderLine
	EntityProduct
	EntityPromotion
	EntityProductPromotion
	EntityVendorCommission
)

var entityTypeNames = map[EntityType]string{
	EntityOrder:            "Order",
	EntityOrderLine:        "OrderLine",
	EntityProduct:          "Product",
	EntityPromotion:        "Promotion",
	EntityProductPromotion: "ProductPromotion",
	EntityVendorCommission: "VendorCommission",
}

// storeNames maps an entity type to the name of its backing store.
// The same name is used for CSV files, SQL tables, object keys and Redis keys.
var storeNames = map[EntityType]string{
	EntityOrder:            "orders",
	EntityOrderLine:        "order_lines",
	EntityProduct:          "products",
	EntityPromotion:        "promotions",
	EntityProductPromotion: "product_promotions",
	EntityVendorCommission: "commissions",
}

// EntityTypes returns every known entity type in declaration order
func EntityTypes() []EntityType {
	return []EntityType{
		EntityOrder,
		EntityOrderLine,
		EntityProduct,
		EntityPromotion,
		EntityProductPromotion,
		EntityVendorCommission,
	}
}

// String returns the exact-case entity name, e.g. "OrderLine"
func (e EntityType) String() string {
	if name, ok := entityTypeNames[e]; ok {
		return name
	}
	return "Unknown"
}

// StoreName returns the backing store name for the entity type
func (e EntityType) StoreName() string {
	return storeNames[e]
}

// ParseEntityType resolves an exact-case entity name.
// Lower- or mixed-case variants such as "order" or "orderLine" are rejected.
func ParseEntityType(name string) (EntityType, bool) {
	for e, n := range entityTypeNames {
		if n == name {
			return e, true
		}
	}
	return 0, false
}

// Column is a column identifier shared by the record stores
type Column string

const (
	ColumnOrderID            Column = "order_id"
	ColumnProductID          Column = "product_id"
	ColumnProductDescription Column = "product_description"
	ColumnProductPrice       Column = "product_price"
	ColumnProductVATRate     Column = "product_vat_rate"
	ColumnDiscountRate       Column = "discount_rate"
	ColumnQuantity           Column = "quantity"
	ColumnFullPriceAmount    Column = "full_price_amount"
	ColumnDiscountedAmount   Column = "discounted_amount"
	ColumnVATAmount          Column = "vat_amount"
	ColumnTotalAmount        Column = "total_amount"
	ColumnID                 Column = "id"
	ColumnCreatedAt          Column = "created_at"
	ColumnVendorID           Column = "vendor_id"
	ColumnCustomerID         Column = "customer_id"
	ColumnDate               Column = "date"
	ColumnPromotionID        Column = "promotion_id"
	ColumnDescription        Column = "description"
	ColumnRate               Column = "rate"
)

var knownColumns = map[Column]struct{}{
	ColumnOrderID:            {},
	ColumnProductID:          {},
	ColumnProductDescription: {},
	ColumnProductPrice:       {},
	ColumnProductVATRate:     {},
	ColumnDiscountRate:       {},
	ColumnQuantity:           {},
	ColumnFullPriceAmount:    {},
	ColumnDiscountedAmount:   {},
	ColumnVATAmount:          {},
	ColumnTotalAmount:        {},
	ColumnID:                 {},
	ColumnCreatedAt:          {},
	ColumnVendorID:           {},
	ColumnCustomerID:         {},
	ColumnDate:               {},
	ColumnPromotionID:        {},
	ColumnDescription:        {},
	ColumnRate:               {},
}

// ParseColumn resolves a column identifier from the fixed allow-list
func ParseColumn(name string) (Column, bool) {
	c := Column(name)
	if _, ok := knownColumns[c]; !ok {
		return "", false
	}
	return c, true
}

// Row is one record read from a backing store, keyed by column name.
// Values are the store's text representation.
type Row map[string]string

// Get returns the value of a column and whether the row has it
func (r Row) Get(c Column) (string, bool) {
	v, ok := r[string(c)]
	return v, ok
}

// RowSource reads every row of an entity's backing store.
// Implementations return ErrStoreNotFound (possibly wrapped) when the store is missing.
type RowSource interface {
	ReadAll(ctx context.Context, entity EntityType) ([]Row, error)
}

// Record is implemented by every typed entity record
type Record interface {
	EntityType() EntityType
}
