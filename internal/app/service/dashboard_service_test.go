package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupDashboardServiceTest(t *testing.T) *dashboardService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(buyer))
	require.NoError(t, userRepo.Create(&model.User{Email: "other@example.com", PasswordHash: "x", Role: model.RoleUser}))
	require.NoError(t, userRepo.Create(&model.User{Email: "admin@example.com", PasswordHash: "x", Role: model.RoleAdmin}))

	category := &model.Category{Name: "Men", Slug: "men"}
	require.NoError(t, repository.NewCategoryRepository(testDB).Create(category))
	require.NoError(t, productRepo.Create(&model.Product{Name: "Shirt", Price: 10, CategoryID: category.ID}))

	loc := time.UTC
	orders := []model.Order{
		{Total: 999, Status: model.OrderStatusDelivered, CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, loc)},
		{Total: 100, Status: model.OrderStatusDelivered, CreatedAt: time.Date(2026, 1, 10, 10, 0, 0, 0, loc)},
		{Total: 50, Status: model.OrderStatusPending, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, loc)},
		{Total: 30, Status: model.OrderStatusCancelled, CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, loc)},
	}
	for i := range orders {
		orders[i].UserID = buyer.ID
		orders[i].PaymentMethod = model.PaymentCOD
		require.NoError(t, orderRepo.Create(nil, &orders[i]))
	}

	svc := NewDashboardService(orderRepo, userRepo, productRepo).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, loc) }
	return svc
}

func TestDashboardService_Stats(t *testing.T) {
	svc := setupDashboardServiceTest(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.True(t, decimal.NewFromInt(1149).Equal(stats.TotalRevenue), stats.TotalRevenue.String())
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.TotalProducts)
}

func TestDashboardService_Charts(t *testing.T) {
	svc := setupDashboardServiceTest(t)

	charts, err := svc.Charts(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, charts.RevenueByMonth, 3)
	assert.Equal(t, "2026-01", charts.RevenueByMonth[0].Month)
	assert.True(t, decimal.NewFromInt(100).Equal(charts.RevenueByMonth[0].Revenue))
	assert.Equal(t, "2026-02", charts.RevenueByMonth[1].Month)
	assert.True(t, charts.RevenueByMonth[1].Revenue.IsZero())
	assert.Equal(t, "2026-03", charts.RevenueByMonth[2].Month)
	assert.True(t, decimal.NewFromInt(50).Equal(charts.RevenueByMonth[2].Revenue))
	assert.Equal(t, 1, charts.RevenueByMonth[2].Orders)

	total := int64(0)
	for _, c := range charts.OrdersByStatus {
		total += c.Count
	}
	assert.Equal(t, int64(4), total)
}

func TestDashboardService_ExportOrders(t *testing.T) {
	svc := setupDashboardServiceTest(t)

	data, err := svc.ExportOrders(repository.OrderFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 6)
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "buyer@example.com", rows[1][2])

	summary := rows[len(rows)-1][0]
	assert.Contains(t, summary, "4 orders")
	assert.Contains(t, summary, "149.00")
}
