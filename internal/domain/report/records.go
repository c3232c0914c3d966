package report

import "github.com/shopspring/decimal"

// Order is a customer order placed with a vendor
type Order struct {
	ID         string
	CreatedAt  string
	VendorID   string
	CustomerID string
}

// EntityType implements Record
func (Order) EntityType() EntityType { return EntityOrder }

// OrderLine is a single product line of an order
type OrderLine struct {
	OrderID            string
	ProductID          string
	ProductDescription string
	ProductPrice       decimal.Decimal
	ProductVATRate     decimal.Decimal
	DiscountRate       decimal.Decimal
	Quantity           decimal.Decimal
	FullPriceAmount    decimal.Decimal
	DiscountedAmount   decimal.Decimal
	VATAmount          decimal.Decimal
	TotalAmount        decimal.Decimal
}

// EntityType implements Record
func (OrderLine) EntityType() EntityType { return EntityOrderLine }

// Product is a catalog product
type Product struct {
	ID          string
	Description string
}

// EntityType implements Record
func (Product) EntityType() EntityType { return EntityProduct }

// Promotion is a named promotion campaign
type Promotion struct {
	ID          string
	Description string
}

// EntityType implements Record
func (Promotion) EntityType() EntityType { return EntityPromotion }

// ProductPromotion links a product to a promotion on a given date
type ProductPromotion struct {
	Date        string
	ProductID   string
	PromotionID string
}

// EntityType implements Record
func (ProductPromotion) EntityType() EntityType { return EntityProductPromotion }

// VendorCommission is the commission rate a vendor earns on a given date
type VendorCommission struct {
	Date     string
	VendorID string
	Rate     decimal.Decimal
}

// EntityType implements Record
func (VendorCommission) EntityType() EntityType { return EntityVendorCommission }
