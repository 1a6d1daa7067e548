package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/middleware"
)

const reportDateLayout = "2006-01-02"

// reportingHandler handles HTTP requests for financial statements.
type reportingHandler struct {
	reportingService     portssvc.ReportingSvcFacade
	monthlyReportService portssvc.MonthlyReportSvcFacade
}

// registerReportingRoutes registers routes related to financial reports.
func registerReportingRoutes(
	rg *gin.RouterGroup,
	reportingService portssvc.ReportingSvcFacade,
	monthlyReportService portssvc.MonthlyReportSvcFacade,
) {
	h := &reportingHandler{
		reportingService:     reportingService,
		monthlyReportService: monthlyReportService,
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/income-statement", h.getIncomeStatement)
		reports.GET("/cashflow-statement", h.getCashflowStatement)
		reports.GET("/monthly", h.getMonthlyReports)
	}
}

// parseReportDate parses an optional 2006-01-02 query value, falling back
// to the given default.
func parseReportDate(c *gin.Context, value string, fallback time.Time) (time.Time, bool) {
	if value == "" {
		return fallback, true
	}
	d, err := time.Parse(reportDateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD: " + value})
		return time.Time{}, false
	}
	return d, true
}

// rangeFromParams resolves a period: an empty end means today, an empty
// start means the first day of the end date's year.
func rangeFromParams(c *gin.Context, params dto.ReportRangeParams) (time.Time, time.Time, bool) {
	end, ok := parseReportDate(c, params.End, time.Now())
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, ok := parseReportDate(c, params.Start, time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location()))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not precede start date"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	reportDate, ok := parseReportDate(c, params.Date, time.Now())
	if !ok {
		return
	}

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), reportDate)
	if err != nil {
		logger.Error("Failed to generate balance sheet", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate balance sheet"})
		return
	}

	c.JSON(http.StatusOK, bs)
}

func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	start, end, ok := rangeFromParams(c, params)
	if !ok {
		return
	}

	is, err := h.reportingService.IncomeStatement(c.Request.Context(), start, end)
	if err != nil {
		logger.Error("Failed to generate income statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate income statement"})
		return
	}

	c.JSON(http.StatusOK, is)
}

func (h *reportingHandler) getCashflowStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	start, end, ok := rangeFromParams(c, params)
	if !ok {
		return
	}

	cf, err := h.reportingService.CashflowStatement(c.Request.Context(), start, end)
	if err != nil {
		logger.Error("Failed to generate cashflow statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate cashflow statement"})
		return
	}

	c.JSON(http.StatusOK, cf)
}

func (h *reportingHandler) getMonthlyReports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	set, err := h.monthlyReportService.GetOrCreate(c.Request.Context(), time.Now())
	if err != nil {
		logger.Error("Failed to build monthly report snapshot", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build monthly reports"})
		return
	}

	c.JSON(http.StatusOK, set)
}
