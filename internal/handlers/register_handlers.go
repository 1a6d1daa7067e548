package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/", getHome)

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, services.Account)
	registerTransactionRoutes(v1, services.Ledger)
	registerBusinessRoutes(v1, services.Business)
	registerFixedExpenseRoutes(v1, services.FixedExpense)
	registerReportingRoutes(v1, services.Reporting, services.MonthlyReport)
}

func getHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from BizLedger Backend API v1"})
}
