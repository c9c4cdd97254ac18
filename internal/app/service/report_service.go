package service

import (
	"context"
	"fmt"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/repository"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet       = "Orders"
	reportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var reportHeader = []interface{}{
	"Order ID", "Created At", "User ID", "Full Name", "City", "Items", "Shipping Cost", "Total",
}

// ObjectStore uploads report files. *storage.S3Storage satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// OrderReport is one day of orders rendered as an XLSX workbook.
type OrderReport struct {
	Day     time.Time
	Orders  int
	Revenue decimal.Decimal
	Content []byte
}

func (r *OrderReport) Filename() string {
	return fmt.Sprintf("orders-%s.xlsx", r.Day.Format("2006-01-02"))
}

func (r *OrderReport) ContentType() string {
	return reportContentType
}

// ReportKey is the object key of the report for day.
func ReportKey(day time.Time) string {
	return fmt.Sprintf("reports/orders-%s.xlsx", day.UTC().Format("2006-01-02"))
}

type ReportService interface {
	BuildDailyOrderReport(ctx context.Context, day time.Time) (*OrderReport, error)
	UploadDailyOrderReport(ctx context.Context, day time.Time) (string, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
	store     ObjectStore
}

// NewReportService creates the service. store may be nil, in which case only
// building reports works.
func NewReportService(orderRepo repository.OrderRepository, store ObjectStore) ReportService {
	return &reportService{orderRepo: orderRepo, store: store}
}

// BuildDailyOrderReport renders all orders created on the UTC calendar day.
func (s *reportService) BuildDailyOrderReport(ctx context.Context, day time.Time) (*OrderReport, error) {
	y, m, d := day.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	orders, err := s.orderRepo.FindCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.Internal("load orders for report", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, apperrors.Internal("prepare report sheet", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return nil, apperrors.Internal("write report header", err)
	}

	revenue := decimal.Zero
	for i, order := range orders {
		items := 0
		for _, item := range order.Items {
			items += item.Quantity
		}
		row := []interface{}{
			order.ID,
			order.CreatedAt.UTC().Format(time.RFC3339),
			order.UserID,
			order.FullName,
			order.City,
			items,
			order.ShippingCost.StringFixed(2),
			order.TotalPrice.StringFixed(2),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, apperrors.Internal("write report row", err)
		}
		revenue = revenue.Add(order.TotalPrice)
	}

	summary := []interface{}{"Orders", len(orders), "", "", "", "", "Revenue", revenue.StringFixed(2)}
	cell, _ := excelize.CoordinatesToCellName(1, len(orders)+3)
	if err := f.SetSheetRow(reportSheet, cell, &summary); err != nil {
		return nil, apperrors.Internal("write report summary", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Internal("render report", err)
	}

	logger.Info("Daily order report built", map[string]interface{}{
		"day":     from.Format("2006-01-02"),
		"orders":  len(orders),
		"revenue": revenue.StringFixed(2),
	})
	return &OrderReport{
		Day:     from,
		Orders:  len(orders),
		Revenue: revenue,
		Content: buf.Bytes(),
	}, nil
}

// UploadDailyOrderReport builds the report for day and stores it under
// ReportKey(day).
func (s *reportService) UploadDailyOrderReport(ctx context.Context, day time.Time) (string, error) {
	if s.store == nil {
		return "", ErrReportStorageMissing
	}

	report, err := s.BuildDailyOrderReport(ctx, day)
	if err != nil {
		return "", err
	}

	key := ReportKey(report.Day)
	url, err := s.store.PutObject(ctx, key, reportContentType, report.Content)
	if err != nil {
		return "", apperrors.Internal("upload report", err)
	}

	logger.Info("Daily order report uploaded", map[string]interface{}{
		"key": key,
		"url": url,
	})
	return url, nil
}
