package report

import (
	"errors"
	"fmt"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/shopspring/decimal"
)

// recordBinding turns a store row into the typed record of one entity type
type recordBinding struct {
	construct func(row report.Row) (report.Record, error)
}

var recordBindings = map[report.EntityType]recordBinding{
	report.EntityOrder: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		o := report.Order{
			ID:         r.text(report.ColumnID),
			CreatedAt:  r.text(report.ColumnCreatedAt),
			VendorID:   r.text(report.ColumnVendorID),
			CustomerID: r.text(report.ColumnCustomerID),
		}
		return o, r.err
	}},
	report.EntityOrderLine: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		l := report.OrderLine{
			OrderID:            r.text(report.ColumnOrderID),
			ProductID:          r.text(report.ColumnProductID),
			ProductDescription: r.optionalText(report.ColumnProductDescription),
			ProductPrice:       r.decimal(report.ColumnProductPrice),
			ProductVATRate:     r.decimal(report.ColumnProductVATRate),
			DiscountRate:       r.decimal(report.ColumnDiscountRate),
			Quantity:           r.decimal(report.ColumnQuantity),
			FullPriceAmount:    r.decimal(report.ColumnFullPriceAmount),
			DiscountedAmount:   r.decimal(report.ColumnDiscountedAmount),
			VATAmount:          r.decimal(report.ColumnVATAmount),
			TotalAmount:        r.decimal(report.ColumnTotalAmount),
		}
		return l, r.err
	}},
	report.EntityProduct: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		p := report.Product{
			ID:          r.text(report.ColumnID),
			Description: r.optionalText(report.ColumnDescription),
		}
		return p, r.err
	}},
	report.EntityPromotion: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		p := report.Promotion{
			ID:          r.text(report.ColumnID),
			Description: r.optionalText(report.ColumnDescription),
		}
		return p, r.err
	}},
	report.EntityProductPromotion: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		pp := report.ProductPromotion{
			Date:        r.text(report.ColumnDate),
			ProductID:   r.text(report.ColumnProductID),
			PromotionID: r.text(report.ColumnPromotionID),
		}
		return pp, r.err
	}},
	report.EntityVendorCommission: {construct: func(row report.Row) (report.Record, error) {
		r := rowReader{row: row}
		c := report.VendorCommission{
			Date:     r.text(report.ColumnDate),
			VendorID: r.text(report.ColumnVendorID),
			Rate:     r.decimal(report.ColumnRate),
		}
		return c, r.err
	}},
}

// rowReader reads typed column values and keeps the first error
type rowReader struct {
	row report.Row
	err error
}

func (r *rowReader) text(c report.Column) string {
	v, ok := r.row.Get(c)
	if !ok {
		r.fail(&report.RowError{Column: string(c), Err: report.ErrMissingColumn})
	}
	return v
}

func (r *rowReader) optionalText(c report.Column) string {
	v, _ := r.row.Get(c)
	return v
}

func (r *rowReader) decimal(c report.Column) decimal.Decimal {
	v := r.text(c)
	if r.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.fail(&report.RowError{Column: string(c), Value: v, Err: fmt.Errorf("invalid number: %w", err)})
		return decimal.Zero
	}
	return d
}

func (r *rowReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// withRowContext fills in the store and row number of a RowError
func withRowContext(err error, entity report.EntityType, row int) error {
	var rowErr *report.RowError
	if errors.As(err, &rowErr) {
		rowErr.Store = entity.StoreName()
		rowErr.Row = row
		return rowErr
	}
	return fmt.Errorf("%s row %d: %w", entity.StoreName(), row, err)
}
