package report

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/salesreport/internal/application/report"

// Build outcomes passed to BuildRecorder
const (
	OutcomeOK           = "ok"
	OutcomeInvalidDate  = "invalid_date"
	OutcomeLookupFailed = "lookup_failed"
	OutcomeError        = "error"
)

// BuildRecorder observes every finished report build
type BuildRecorder interface {
	RecordBuild(ctx context.Context, outcome string, elapsed time.Duration, orders int)
}

type nopRecorder struct{}

func (nopRecorder) RecordBuild(context.Context, string, time.Duration, int) {}

// ReportService builds the daily sales and commission report
type ReportService struct {
	filter   *RecordFilter
	joinMode report.JoinMode
	basis    report.CommissionBasis
	logger   *zap.Logger
	tracer   trace.Tracer
	recorder BuildRecorder
}

// ServiceOption is a functional option for ReportService configuration
type ServiceOption func(*ReportService)

// WithJoinMode sets how order ids are paired with vendor ids
func WithJoinMode(mode report.JoinMode) ServiceOption {
	return func(s *ReportService) {
		s.joinMode = mode
	}
}

// WithCommissionBasis sets what each order's vendor rate is applied to
func WithCommissionBasis(basis report.CommissionBasis) ServiceOption {
	return func(s *ReportService) {
		s.basis = basis
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *ReportService) {
		s.logger = logger
	}
}

// WithTracer sets the tracer report builds are spanned with
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(s *ReportService) {
		s.tracer = tracer
	}
}

// WithBuildRecorder sets the recorder told about every finished build
func WithBuildRecorder(recorder BuildRecorder) ServiceOption {
	return func(s *ReportService) {
		s.recorder = recorder
	}
}

// NewReportService creates a new ReportService
func NewReportService(filter *RecordFilter, opts ...ServiceOption) *ReportService {
	s := &ReportService{
		filter:   filter,
		joinMode: report.JoinPositional,
		basis:    report.CommissionRunningCount,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// orderPair drives one step of the join loop
type orderPair struct {
	orderID  string
	vendorID string
}

// totals are the running sums folded over every processed order
type totals struct {
	discount          decimal.Decimal
	discountRateSum   decimal.Decimal
	discountRateCount int64
	orderTotalSum     decimal.Decimal
	orderTotalCount   int64
	commission        decimal.Decimal
}

// BuildReport computes the report for date. It fails with report.ErrInvalidDate
// before touching any store, and with a *report.LookupError when a vendor has no
// commission rate or a product maps to a promotion without a bucket.
func (s *ReportService) BuildReport(ctx context.Context, date string) (*report.DailyReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.BuildReport", trace.WithAttributes(
		attribute.String("report.date", date),
		attribute.String("report.join_mode", string(s.joinMode)),
	))
	defer span.End()

	start := time.Now()
	result, err := s.build(ctx, date)

	outcome := buildOutcome(err)
	orders := 0
	if result != nil {
		orders = result.Items
		span.SetAttributes(attribute.Int("report.items", result.Items))
	}
	if outcome == OutcomeLookupFailed || outcome == OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	s.recorder.RecordBuild(ctx, outcome, time.Since(start), orders)

	return result, err
}

func buildOutcome(err error) string {
	var lookupErr *report.LookupError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, report.ErrInvalidDate):
		return OutcomeInvalidDate
	case errors.As(err, &lookupErr):
		return OutcomeLookupFailed
	default:
		return OutcomeError
	}
}

func (s *ReportService) build(ctx context.Context, date string) (*report.DailyReport, error) {
	if !report.IsDateValid(date) {
		return nil, report.ErrInvalidDate
	}

	orders, err := Filter[report.Order](ctx, s.filter, date, report.ColumnCreatedAt)
	if err != nil {
		return nil, err
	}
	commissions, err := Filter[report.VendorCommission](ctx, s.filter, date, report.ColumnDate)
	if err != nil {
		return nil, err
	}
	productPromotions, err := Filter[report.ProductPromotion](ctx, s.filter, date, report.ColumnDate)
	if err != nil {
		return nil, err
	}

	result := report.NewDailyReport(date)
	result.Items = len(orders)
	result.Customers = len(distinctInOrder(orders, func(o report.Order) string { return o.CustomerID }))

	var acc totals
	for _, pair := range s.pairOrders(orders) {
		lines, err := Filter[report.OrderLine](ctx, s.filter, pair.orderID, report.ColumnOrderID)
		if err != nil {
			return nil, err
		}

		orderTotal := decimal.Zero
		for _, line := range lines {
			acc.discount = acc.discount.Add(line.DiscountedAmount)
			acc.discountRateSum = acc.discountRateSum.Add(line.DiscountRate)
			orderTotal = orderTotal.Add(line.TotalAmount)
		}
		acc.orderTotalSum = acc.orderTotalSum.Add(orderTotal)
		acc.discountRateCount += int64(len(lines))
		acc.orderTotalCount += int64(len(lines))

		rate, err := vendorRate(commissions, pair.vendorID, date)
		if err != nil {
			return nil, err
		}
		acc.commission = acc.commission.Add(s.commissionBase(acc.orderTotalCount, orderTotal).Mul(rate))

		for _, line := range lines {
			promotionID, err := promotionFor(productPromotions, line.ProductID)
			if err != nil {
				return nil, err
			}
			if promotionID == 0 {
				continue
			}
			if err := result.Commissions.Promotions.Add(promotionID, line.TotalAmount.Mul(rate)); err != nil {
				return nil, err
			}
		}

		s.logger.Debug("Order folded into report",
			zap.String("date", date),
			zap.String("order_id", pair.orderID),
			zap.String("vendor_id", pair.vendorID),
			zap.Int("lines", len(lines)),
		)
	}

	result.TotalDiscountAmount = acc.discount
	result.DiscountRateAvg = average(acc.discountRateSum, acc.discountRateCount)
	result.OrderTotalAvg = average(acc.orderTotalSum, acc.orderTotalCount)
	result.Commissions.Total = acc.commission
	result.Commissions.OrderAverage = average(acc.commission, int64(result.Items))

	s.logger.Info("Daily report built",
		zap.String("date", date),
		zap.Int("items", result.Items),
		zap.Int("customers", result.Customers),
		zap.String("join_mode", string(s.joinMode)),
		zap.String("commission_basis", string(s.basis)),
	)

	return result, nil
}

// pairOrders yields the (order id, vendor id) pairs the join loop walks
func (s *ReportService) pairOrders(orders []report.Order) []orderPair {
	if s.joinMode == report.JoinPerOrder {
		seen := make(map[string]struct{}, len(orders))
		pairs := make([]orderPair, 0, len(orders))
		for _, o := range orders {
			if _, ok := seen[o.ID]; ok {
				continue
			}
			seen[o.ID] = struct{}{}
			pairs = append(pairs, orderPair{orderID: o.ID, vendorID: o.VendorID})
		}
		return pairs
	}

	// Both id lists are deduplicated independently in first-seen order and zipped,
	// so an order id is only aligned with its own vendor while vendors do not repeat.
	orderIDs := distinctInOrder(orders, func(o report.Order) string { return o.ID })
	vendorIDs := distinctInOrder(orders, func(o report.Order) string { return o.VendorID })

	n := min(len(orderIDs), len(vendorIDs))
	pairs := make([]orderPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = orderPair{orderID: orderIDs[i], vendorID: vendorIDs[i]}
	}
	return pairs
}

// commissionBase is the amount an order's vendor rate is applied to. The running
// count spans all orders processed so far.
func (s *ReportService) commissionBase(runningCount int64, orderTotal decimal.Decimal) decimal.Decimal {
	if s.basis == report.CommissionOrderTotal {
		return orderTotal
	}
	return decimal.NewFromInt(runningCount)
}

// vendorRate returns the rate of the first commission matching vendorID
func vendorRate(commissions []report.VendorCommission, vendorID, date string) (decimal.Decimal, error) {
	for _, c := range commissions {
		if c.VendorID == vendorID {
			return c.Rate, nil
		}
	}
	return decimal.Zero, &report.LookupError{Kind: report.LookupVendorRate, Key: vendorID, Date: date}
}

// promotionFor returns the promotion id of the first product promotion matching
// productID, or 0 when the product is not promoted
func promotionFor(productPromotions []report.ProductPromotion, productID string) (int, error) {
	for _, pp := range productPromotions {
		if pp.ProductID != productID {
			continue
		}
		id, err := strconv.Atoi(pp.PromotionID)
		if err != nil {
			return 0, &report.RowError{
				Store:  report.EntityProductPromotion.StoreName(),
				Column: string(report.ColumnPromotionID),
				Value:  pp.PromotionID,
				Err:    err,
			}
		}
		return id, nil
	}
	return 0, nil
}

func average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count))
}

func distinctInOrder[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
