package services

// ServiceContainer holds all the services and manages their dependencies.
type ServiceContainer struct {
	Account       AccountSvcFacade
	Ledger        LedgerSvcFacade
	Business      BusinessSvcFacade
	FixedExpense  FixedExpenseSvcFacade
	Reporting     ReportingSvcFacade
	MonthlyReport MonthlyReportSvcFacade
}
