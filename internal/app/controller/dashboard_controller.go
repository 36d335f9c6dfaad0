package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats
// GET /api/v1/admin/dashboard
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	stats, err := ctrl.dashboardService.Stats(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load dashboard stats", err)
		apperrors.InternalError(c, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCharts
// GET /api/v1/admin/dashboard/charts?months=6
func (ctrl *DashboardController) GetCharts(c *gin.Context) {
	months, _ := strconv.Atoi(c.Query("months"))
	if months > 24 {
		months = 24
	}

	charts, err := ctrl.dashboardService.Charts(c.Request.Context(), months)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load dashboard charts", err)
		apperrors.InternalError(c, "Failed to load charts")
		return
	}
	c.JSON(http.StatusOK, charts)
}

// ExportOrders downloads matching orders as an XLSX workbook
// GET /api/v1/admin/dashboard/export?status=&from=&to=
func (ctrl *DashboardController) ExportOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}

	data, err := ctrl.dashboardService.ExportOrders(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to export orders", err)
		apperrors.InternalError(c, "Failed to export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
