package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/utils/amounts"
)

// fixedExpenseService implements FixedExpenseSvcFacade. A charge posts a
// two-split transaction (expense account debited, funding account credited)
// and stamps the run month in the same database transaction, so a month's
// charge can never be credited twice.
type fixedExpenseService struct {
	BaseService
	expenseRepo portsrepo.FixedExpenseRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewFixedExpenseService creates a new fixed expense service.
func NewFixedExpenseService(expenseRepo portsrepo.FixedExpenseRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.FixedExpenseSvcFacade {
	return &fixedExpenseService{expenseRepo: expenseRepo, accountRepo: accountRepo}
}

var _ portssvc.FixedExpenseSvcFacade = (*fixedExpenseService)(nil)

func (s *fixedExpenseService) ListFixedExpenses(ctx context.Context) ([]domain.FixedExpense, error) {
	expenses, err := s.expenseRepo.ListFixedExpenses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fixed expenses")
		return nil, fmt.Errorf("failed to list fixed expenses: %w", err)
	}
	if expenses == nil {
		return []domain.FixedExpense{}, nil
	}
	return expenses, nil
}

func (s *fixedExpenseService) GetFixedExpenseByID(ctx context.Context, id int64) (*domain.FixedExpense, error) {
	expense, err := s.expenseRepo.FindFixedExpenseByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find fixed expense", slog.Int64("fixed_expense_id", id))
		}
		return nil, err
	}
	return expense, nil
}

func (s *fixedExpenseService) CreateFixedExpense(ctx context.Context, req dto.FixedExpenseRequest) (*domain.FixedExpense, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	expense := domain.FixedExpense{
		Name:              req.Name,
		Amount:            req.Amount,
		ExpenseAccountID:  req.ExpenseAccountID,
		PrimaryAccountID:  req.PrimaryAccountID,
		FallbackAccountID: req.FallbackAccountID,
		DayOfMonth:        req.DayOfMonth,
		IsActive:          isActive,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	created, err := s.expenseRepo.SaveFixedExpense(ctx, expense)
	if err != nil {
		s.LogError(ctx, err, "Failed to save fixed expense", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save fixed expense: %w", err)
	}
	s.LogInfo(ctx, "Fixed expense created", slog.Int64("fixed_expense_id", created.ID), slog.String("name", created.Name))
	return created, nil
}

func (s *fixedExpenseService) UpdateFixedExpense(ctx context.Context, id int64, req dto.FixedExpenseRequest) (*domain.FixedExpense, error) {
	existing, err := s.expenseRepo.FindFixedExpenseByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find fixed expense for update", slog.Int64("fixed_expense_id", id))
		}
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Amount = req.Amount
	existing.ExpenseAccountID = req.ExpenseAccountID
	existing.PrimaryAccountID = req.PrimaryAccountID
	existing.FallbackAccountID = req.FallbackAccountID
	existing.DayOfMonth = req.DayOfMonth
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.expenseRepo.UpdateFixedExpense(ctx, *existing); err != nil {
		s.LogError(ctx, err, "Failed to update fixed expense", slog.Int64("fixed_expense_id", id))
		return nil, fmt.Errorf("failed to update fixed expense: %w", err)
	}
	return existing, nil
}

func (s *fixedExpenseService) DeleteFixedExpense(ctx context.Context, id int64) error {
	if _, err := s.expenseRepo.FindFixedExpenseByID(ctx, id); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find fixed expense for delete", slog.Int64("fixed_expense_id", id))
		}
		return err
	}
	if err := s.expenseRepo.DeleteFixedExpense(ctx, id); err != nil {
		s.LogError(ctx, err, "Failed to delete fixed expense", slog.Int64("fixed_expense_id", id))
		return fmt.Errorf("failed to delete fixed expense: %w", err)
	}
	s.LogInfo(ctx, "Fixed expense deleted", slog.Int64("fixed_expense_id", id))
	return nil
}

// validateRequest checks that every referenced account exists.
func (s *fixedExpenseService) validateRequest(ctx context.Context, req dto.FixedExpenseRequest) error {
	refs := []struct {
		field string
		id    string
	}{
		{"expenseAccountID", req.ExpenseAccountID},
		{"primaryAccountID", req.PrimaryAccountID},
		{"fallbackAccountID", req.FallbackAccountID},
	}
	for _, ref := range refs {
		if ref.id == "" {
			continue
		}
		if _, err := s.accountRepo.FindAccountByID(ctx, ref.id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s refers to a missing account", apperrors.ErrValidation, ref.field)
			}
			return fmt.Errorf("failed to fetch account: %w", err)
		}
	}
	return nil
}

// IsDue applies the monthly schedule: never twice in the same calendar
// month, and only on or after the due day. The configured day is clamped
// to the length of the month, so a day-28 charge still fires in February.
func (s *fixedExpenseService) IsDue(expense domain.FixedExpense, asOf time.Time) bool {
	if expense.LastRunMonth != nil &&
		expense.LastRunMonth.Year() == asOf.Year() &&
		expense.LastRunMonth.Month() == asOf.Month() {
		return false
	}
	dueDate := time.Date(asOf.Year(), asOf.Month(), dueDayFor(expense.DayOfMonth, asOf), 0, 0, 0, 0, time.UTC)
	asOfDate := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return !asOfDate.Before(dueDate)
}

// dueDayFor clamps the configured day of month into [1, last day of the
// target month].
func dueDayFor(dayOfMonth int, asOf time.Time) int {
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	lastDay := time.Date(asOf.Year(), asOf.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dayOfMonth > lastDay {
		return lastDay
	}
	return dayOfMonth
}

func (s *fixedExpenseService) Execute(ctx context.Context, expense domain.FixedExpense, runDate time.Time, force bool) (*string, []string, error) {
	if !expense.IsActive {
		return nil, []string{"fixed expense is inactive, not executed"}, nil
	}
	if !force && !s.IsDue(expense, runDate) {
		return nil, []string{fmt.Sprintf("not yet due (day %d), not executed", dueDayFor(expense.DayOfMonth, runDate))}, nil
	}
	if !expense.Amount.IsPositive() {
		return nil, []string{"amount must be positive, not executed"}, nil
	}

	payAccountID, warnings, err := s.selectPaymentAccount(ctx, expense)
	if err != nil {
		return nil, nil, err
	}
	if payAccountID == "" {
		warnings = append(warnings, "no payment account available, not executed")
		return nil, warnings, nil
	}

	num, denom := amounts.ToFraction(expense.Amount)
	amount := amounts.FromFraction(num, denom)
	now := time.Now().UTC()
	txnID := newGUID()
	memo := fmt.Sprintf("%s automatic charge", expense.Name)

	txn := domain.Transaction{
		TransactionID: txnID,
		PostDate:      dateOnly(runDate),
		EnterDate:     now,
		Description:   fmt.Sprintf("%s %s recurring charge", runDate.Format("2006-01"), expense.Name),
		Splits: []domain.Split{
			{
				SplitID:        newGUID(),
				TransactionID:  txnID,
				AccountID:      expense.ExpenseAccountID,
				Amount:         amount,
				Memo:           memo,
				ReconcileState: domain.ReconcileNone,
				CreatedAt:      now,
			},
			{
				SplitID:        newGUID(),
				TransactionID:  txnID,
				AccountID:      payAccountID,
				Amount:         amount.Neg(),
				Memo:           memo,
				ReconcileState: domain.ReconcileNone,
				CreatedAt:      now,
			},
		},
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	runMonth := time.Date(runDate.Year(), runDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := s.expenseRepo.RecordRun(ctx, expense.ID, runMonth, now, txn, deltasFor(txn.Splits, false)); err != nil {
		s.LogError(ctx, err, "Failed to record fixed expense run",
			slog.Int64("fixed_expense_id", expense.ID),
			slog.String("run_month", runMonth.Format("2006-01")))
		return nil, nil, fmt.Errorf("failed to record fixed expense run: %w", err)
	}

	s.LogInfo(ctx, "Fixed expense executed",
		slog.Int64("fixed_expense_id", expense.ID),
		slog.String("transaction_id", txnID),
		slog.String("pay_account_id", payAccountID))
	return &txnID, warnings, nil
}

func (s *fixedExpenseService) ExecuteAllDue(ctx context.Context, runDate time.Time) ([]domain.FixedExpenseRunResult, error) {
	expenses, err := s.expenseRepo.ListFixedExpenses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fixed expenses for run")
		return nil, fmt.Errorf("failed to list fixed expenses: %w", err)
	}

	results := []domain.FixedExpenseRunResult{}
	for _, expense := range expenses {
		if !expense.IsActive || !s.IsDue(expense, runDate) {
			continue
		}
		// Due-ness was just checked; force skips the re-check inside Execute.
		txnID, warnings, err := s.Execute(ctx, expense, runDate, true)
		if err != nil {
			return nil, err
		}
		if warnings == nil {
			warnings = []string{}
		}
		results = append(results, domain.FixedExpenseRunResult{
			Expense:       expense,
			TransactionID: txnID,
			Warnings:      warnings,
		})
	}
	return results, nil
}

// selectPaymentAccount picks the funding account by balance: the primary
// account when it can cover the amount, otherwise the fallback (with a
// warning, and a second warning when the fallback cannot cover it either).
func (s *fixedExpenseService) selectPaymentAccount(ctx context.Context, expense domain.FixedExpense) (string, []string, error) {
	warnings := []string{}

	primary, err := s.findOptionalAccount(ctx, expense.PrimaryAccountID)
	if err != nil {
		return "", nil, err
	}
	fallback, err := s.findOptionalAccount(ctx, expense.FallbackAccountID)
	if err != nil {
		return "", nil, err
	}

	if primary != nil && primary.CurrentBalance.GreaterThanOrEqual(expense.Amount) {
		return primary.AccountID, warnings, nil
	}

	if primary != nil {
		warnings = append(warnings, fmt.Sprintf(
			"primary account %s has insufficient balance (%s), using fallback account",
			primary.Name, primary.CurrentBalance.String()))
	} else {
		warnings = append(warnings, "no primary payment account configured")
	}

	if fallback != nil {
		if fallback.CurrentBalance.LessThan(expense.Amount) {
			warnings = append(warnings, fmt.Sprintf(
				"fallback account %s also has insufficient balance (%s), balance may go negative",
				fallback.Name, fallback.CurrentBalance.String()))
		}
		return fallback.AccountID, warnings, nil
	}

	warnings = append(warnings, "no fallback account configured, charging primary account anyway")
	return expense.PrimaryAccountID, warnings, nil
}

func (s *fixedExpenseService) findOptionalAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, nil
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return account, nil
}
