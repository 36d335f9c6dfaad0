package controller

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupDashboardControllerTest(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	user := &model.User{Email: "stats@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(user))

	orderRepo := repository.NewOrderRepository(testDB)
	for _, o := range []*model.Order{
		{UserID: user.ID, Status: model.OrderStatusDelivered, Total: 100, PaymentMethod: model.PaymentCOD},
		{UserID: user.ID, Status: model.OrderStatusCancelled, Total: 40, PaymentMethod: model.PaymentCard},
	} {
		require.NoError(t, testDB.Create(o).Error)
	}

	ctrl := NewDashboardController(service.NewDashboardService(orderRepo, userRepo, repository.NewProductRepository(testDB)))
	router := gin.New()
	router.GET("/admin/dashboard", ctrl.GetStats)
	router.GET("/admin/dashboard/charts", ctrl.GetCharts)
	router.GET("/admin/dashboard/export", ctrl.ExportOrders)
	return router
}

func TestDashboardController_GetStats(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["total_orders"])
	assert.Equal(t, "100", body["total_revenue"])
	assert.Equal(t, float64(1), body["total_customers"])
}

func TestDashboardController_GetCharts(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/admin/dashboard/charts?months=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Len(t, body["revenue_by_month"], 3)
}

func TestDashboardController_ExportOrders(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/admin/dashboard/export?status=delivered", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	// header, one order, blank, summary
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "Order ID", rows[0][0])

	w = performRequest(router, http.MethodGet, "/admin/dashboard/export?to=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
