package services

import (
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.TransactionRepo, repos.AccountRepo)
	container.Business = NewBusinessService(repos.BusinessRepo, repos.CashflowTypeRepo, repos.AccountRepo)
	container.FixedExpense = NewFixedExpenseService(repos.FixedExpenseRepo, repos.AccountRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.MonthlyReport = NewMonthlyReportService(repos.MonthlyReportRepo, container.Reporting, cfg.SnapshotRetentionMonths)

	return container
}
