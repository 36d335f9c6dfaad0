package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultChartMonths = 6
	DefaultTopProducts = 5
	exportSheet        = "Orders"
	exportTimeLayout   = "2006-01-02 15:04"
	revenueMonthLayout = "2006-01"
)

type DashboardStats struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCustomers int64           `json:"total_customers"`
	TotalProducts  int64           `json:"total_products"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type DashboardCharts struct {
	RevenueByMonth []MonthlyRevenue         `json:"revenue_by_month"`
	OrdersByStatus []repository.StatusCount `json:"orders_by_status"`
	TopProducts    []repository.TopProduct  `json:"top_products"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Charts(ctx context.Context, months int) (*DashboardCharts, error)
	ExportOrders(filter repository.OrderFilter) ([]byte, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewDashboardService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
) DashboardService {
	return &dashboardService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// Stats runs the headline queries in parallel. Revenue leaves out cancelled
// orders.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		stats     DashboardStats
		orders    repository.OrderStats
		customers int64
		products  int64
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.Stats()
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.userRepo.CountByRole(model.RoleUser)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.Count()
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to compute dashboard stats", err)
		return nil, err
	}

	stats.TotalOrders = orders.TotalOrders
	stats.TotalRevenue = decimal.NewFromFloat(orders.TotalRevenue).Round(2)
	stats.TotalCustomers = customers
	stats.TotalProducts = products
	return &stats, nil
}

func (s *dashboardService) Charts(ctx context.Context, months int) (*DashboardCharts, error) {
	if months <= 0 {
		months = DefaultChartMonths
	}

	var charts DashboardCharts
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		charts.RevenueByMonth, err = s.revenueByMonth(months)
		return err
	})
	g.Go(func() error {
		var err error
		charts.OrdersByStatus, err = s.orderRepo.CountByStatus()
		return err
	})
	g.Go(func() error {
		var err error
		charts.TopProducts, err = s.orderRepo.TopProducts(DefaultTopProducts)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to compute dashboard charts", err)
		return nil, err
	}
	return &charts, nil
}

// revenueByMonth buckets orders by calendar month, oldest first, including
// months without orders.
func (s *dashboardService) revenueByMonth(months int) ([]MonthlyRevenue, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	orders, err := s.orderRepo.FindPlacedSince(start)
	if err != nil {
		return nil, err
	}

	buckets := make([]MonthlyRevenue, months)
	index := make(map[string]int, months)
	for i := range buckets {
		label := start.AddDate(0, i, 0).Format(revenueMonthLayout)
		buckets[i] = MonthlyRevenue{Month: label, Revenue: decimal.Zero}
		index[label] = i
	}

	for _, o := range orders {
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		i, ok := index[o.CreatedAt.In(now.Location()).Format(revenueMonthLayout)]
		if !ok {
			continue
		}
		buckets[i].Revenue = buckets[i].Revenue.Add(decimal.NewFromFloat(o.Total))
		buckets[i].Orders++
	}
	return buckets, nil
}

// ExportOrders renders the matching orders as an XLSX workbook with a
// summary line under the table.
func (s *dashboardService) ExportOrders(filter repository.OrderFilter) ([]byte, error) {
	orders, err := s.orderRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Order ID", "Placed At", "Customer", "Status", "Payment", "Items", "Total"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "G1", style)
	}

	revenue := decimal.Zero
	for i, o := range orders {
		items := 0
		for _, item := range o.OrderItems {
			items += item.Quantity
		}
		row := []interface{}{
			o.ID,
			o.CreatedAt.Format(exportTimeLayout),
			o.User.Email,
			string(o.Status),
			string(o.PaymentMethod),
			items,
			o.Total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
		if o.Status != model.OrderStatusCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}

	summaryCell, err := excelize.CoordinatesToCellName(1, len(orders)+3)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(exportSheet, summaryCell, exportSummary(len(orders), revenue)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	logger.Info("Orders exported", map[string]interface{}{
		"count": len(orders),
		"bytes": buf.Len(),
	})
	return buf.Bytes(), nil
}

func exportSummary(count int, revenue decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d orders, revenue %.2f", count, revenue.InexactFloat64())
}
