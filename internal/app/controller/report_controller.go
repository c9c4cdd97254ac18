package controller

import (
	"net/http"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/service"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ReportController struct {
	reportService service.ReportService
	now           func() time.Time
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
		now:           time.Now,
	}
}

// DailyOrders streams the XLSX order report of one UTC day (admin only)
// GET /api/v1/admin/reports/orders?date=YYYY-MM-DD
func (ctrl *ReportController) DailyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	day := ctrl.now().UTC().AddDate(0, 0, -1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := ctrl.reportService.BuildDailyOrderReport(c.Request.Context(), day)
	if err != nil {
		fail(c, log, "Failed to build order report", err, map[string]interface{}{
			"date": day.Format("2006-01-02"),
		})
		return
	}

	log.Info("Order report generated", map[string]interface{}{
		"date":   report.Day.Format("2006-01-02"),
		"orders": report.Orders,
	})

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
	c.Data(http.StatusOK, report.ContentType(), report.Content)
}
