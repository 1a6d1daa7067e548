package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	cashflowTypeRepo := newPgxCashflowTypeRepository(dbPool)
	businessRepo := newPgxBusinessRepository(dbPool, accountRepo)
	fixedExpenseRepo := newPgxFixedExpenseRepository(dbPool, accountRepo)
	reportingRepo := newPgxReportingRepository(dbPool)
	monthlyReportRepo := newPgxMonthlyReportRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:       accountRepo,
		TransactionRepo:   transactionRepo,
		CashflowTypeRepo:  cashflowTypeRepo,
		BusinessRepo:      businessRepo,
		FixedExpenseRepo:  fixedExpenseRepo,
		ReportingRepo:     reportingRepo,
		MonthlyReportRepo: monthlyReportRepo,
	}
}
