package report

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PromotionBucketCount is the number of promotion ids with a commission bucket.
// Bucket ids run from 1 to PromotionBucketCount.
const PromotionBucketCount = 5

// PromotionBuckets holds the commission earned through each promotion, indexed by id-1
type PromotionBuckets [PromotionBucketCount]decimal.Decimal

// Add credits amount to the bucket of promotionID.
// Ids outside 1..PromotionBucketCount fail with a LookupError.
func (b *PromotionBuckets) Add(promotionID int, amount decimal.Decimal) error {
	if promotionID < 1 || promotionID > PromotionBucketCount {
		return &LookupError{Kind: LookupPromotionBucket, Key: strconv.Itoa(promotionID)}
	}
	b[promotionID-1] = b[promotionID-1].Add(amount)
	return nil
}

// Get returns the amount held by a bucket, zero for unknown ids
func (b PromotionBuckets) Get(promotionID int) decimal.Decimal {
	if promotionID < 1 || promotionID > PromotionBucketCount {
		return decimal.Zero
	}
	return b[promotionID-1]
}

// CommissionSummary is the commission part of the daily report
type CommissionSummary struct {
	Promotions   PromotionBuckets
	Total        decimal.Decimal
	OrderAverage decimal.Decimal
}

// DailyReport summarises sales, discounts and commissions for one date
type DailyReport struct {
	Date                string
	Customers           int
	TotalDiscountAmount decimal.Decimal
	Items               int
	OrderTotalAvg       decimal.Decimal
	DiscountRateAvg     decimal.Decimal
	Commissions         CommissionSummary
}

// NewDailyReport returns an all-zero report for date
func NewDailyReport(date string) *DailyReport {
	return &DailyReport{Date: date}
}

// JoinMode selects how order ids are paired with vendor ids during aggregation
type JoinMode string

const (
	// JoinPositional pairs the distinct order ids with the distinct vendor ids by
	// first-seen position, stopping at the shorter list.
	JoinPositional JoinMode = "positional"
	// JoinPerOrder pairs each distinct order id with the vendor of its first order record.
	JoinPerOrder JoinMode = "per_order"
)

// ParseJoinMode resolves a join mode name; empty selects JoinPositional
func ParseJoinMode(s string) (JoinMode, bool) {
	switch JoinMode(s) {
	case "", JoinPositional:
		return JoinPositional, true
	case JoinPerOrder:
		return JoinPerOrder, true
	default:
		return "", false
	}
}

// CommissionBasis selects the quantity each order's vendor rate is applied to
type CommissionBasis string

const (
	// CommissionRunningCount multiplies the rate by the number of order lines seen
	// so far across every processed order, not only the current one.
	CommissionRunningCount CommissionBasis = "running_count"
	// CommissionOrderTotal multiplies the rate by the current order's total amount.
	CommissionOrderTotal CommissionBasis = "order_total"
)

// ParseCommissionBasis resolves a basis name; empty selects CommissionRunningCount
func ParseCommissionBasis(s string) (CommissionBasis, bool) {
	switch CommissionBasis(s) {
	case "", CommissionRunningCount:
		return CommissionRunningCount, true
	case CommissionOrderTotal:
		return CommissionOrderTotal, true
	default:
		return "", false
	}
}
