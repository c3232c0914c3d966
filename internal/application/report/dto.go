package report

import (
	"context"
	"strconv"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/shopspring/decimal"
)

// DailyReportResponse is the wire shape of the daily report
type DailyReportResponse struct {
	Customers           int                 `json:"customers"`
	TotalDiscountAmount float64             `json:"total_discount_amount"`
	Items               int                 `json:"items"`
	OrderTotalAvg       float64             `json:"order_total_avg"`
	DiscountRateAvg     float64             `json:"discount_rate_avg"`
	Commissions         CommissionsResponse `json:"commissions"`
}

// CommissionsResponse is the commission part of DailyReportResponse.
// Promotions is keyed by promotion id as text, "1" through "5".
type CommissionsResponse struct {
	Promotions   map[string]float64 `json:"promotions"`
	Total        float64            `json:"total"`
	OrderAverage float64            `json:"order_average"`
}

// NewDailyReportResponse converts a domain report into its wire shape
func NewDailyReportResponse(r *report.DailyReport) *DailyReportResponse {
	promotions := make(map[string]float64, report.PromotionBucketCount)
	for id := 1; id <= report.PromotionBucketCount; id++ {
		promotions[strconv.Itoa(id)] = toFloat64(r.Commissions.Promotions.Get(id))
	}

	return &DailyReportResponse{
		Customers:           r.Customers,
		TotalDiscountAmount: toFloat64(r.TotalDiscountAmount),
		Items:               r.Items,
		OrderTotalAvg:       toFloat64(r.OrderTotalAvg),
		DiscountRateAvg:     toFloat64(r.DiscountRateAvg),
		Commissions: CommissionsResponse{
			Promotions:   promotions,
			Total:        toFloat64(r.Commissions.Total),
			OrderAverage: toFloat64(r.Commissions.OrderAverage),
		},
	}
}

// GetDailyReport builds the report for date and returns its wire shape
func (s *ReportService) GetDailyReport(ctx context.Context, date string) (*DailyReportResponse, error) {
	r, err := s.BuildReport(ctx, date)
	if err != nil {
		return nil, err
	}
	return NewDailyReportResponse(r), nil
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
