package repositories

// RepositoryProvider bundles every repository facade for injection into the
// service layer.
type RepositoryProvider struct {
	AccountRepo       AccountRepositoryFacade
	TransactionRepo   TransactionRepositoryFacade
	CashflowTypeRepo  CashflowTypeReader
	BusinessRepo      BusinessRepositoryFacade
	FixedExpenseRepo  FixedExpenseRepositoryFacade
	ReportingRepo     ReportingRepository
	MonthlyReportRepo MonthlyReportRepository
}
