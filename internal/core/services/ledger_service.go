package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/utils/amounts"
)

var (
	// ErrUnbalanced is returned when split amounts do not sum to zero.
	ErrUnbalanced = errors.New("split amounts do not sum to zero")
	// ErrMinSplits is returned when fewer than two splits are given.
	ErrMinSplits = errors.New("transaction must have at least two splits")
	// ErrAccountNotFound is returned when a referenced account is missing.
	ErrAccountNotFound = errors.New("account not found")
)

// ledgerService implements LedgerSvcFacade. Posting is all-or-nothing:
// the repository commits split writes and balance deltas in one database
// transaction, so no partial state is ever observable.
type ledgerService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.LedgerSvcFacade {
	return &ledgerService{txnRepo: txnRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// buildSplits converts split requests to domain splits, normalizing each
// amount through the fraction codec so the in-memory amount is always the
// exact value that will be persisted.
func buildSplits(transactionID string, reqs []dto.CreateSplitRequest, now time.Time) []domain.Split {
	splits := make([]domain.Split, len(reqs))
	for i, sr := range reqs {
		num, denom := amounts.ToFraction(sr.Amount)
		splits[i] = domain.Split{
			SplitID:        newGUID(),
			TransactionID:  transactionID,
			AccountID:      sr.AccountID,
			Amount:         amounts.FromFraction(num, denom),
			Memo:           sr.Memo,
			ReconcileState: domain.ReconcileNone,
			CashflowTypeID: sr.CashflowTypeID,
			CreatedAt:      now,
		}
	}
	return splits
}

// validateBalance enforces the double-entry balance law: at least two
// splits whose signed amounts sum to exactly zero.
func validateBalance(splits []domain.Split) error {
	if len(splits) < 2 {
		return fmt.Errorf("%w: got %d", ErrMinSplits, len(splits))
	}
	sum := decimal.Zero
	for _, sp := range splits {
		sum = sum.Add(sp.Amount)
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: sum is %s", ErrUnbalanced, sum.String())
	}
	return nil
}

// deltasFor aggregates signed split amounts into a per-account delta map.
// With negate set the rollback deltas for an existing split set are
// produced instead.
func deltasFor(splits []domain.Split, negate bool) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, len(splits))
	for _, sp := range splits {
		amount := sp.Amount
		if negate {
			amount = amount.Neg()
		}
		deltas[sp.AccountID] = deltas[sp.AccountID].Add(amount)
	}
	return deltas
}

// verifyAccountsExist batch-fetches every referenced account and fails with
// ErrAccountNotFound naming the first missing id.
func (s *ledgerService) verifyAccountsExist(ctx context.Context, splits []domain.Split) error {
	ids := make([]string, 0, len(splits))
	seen := make(map[string]struct{}, len(splits))
	for _, sp := range splits {
		if _, ok := seen[sp.AccountID]; !ok {
			seen[sp.AccountID] = struct{}{}
			ids = append(ids, sp.AccountID)
		}
	}
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range ids {
		if _, found := accountsMap[id]; !found {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
	}
	return nil
}

func (s *ledgerService) PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	now := time.Now().UTC()
	txnID := newGUID()
	splits := buildSplits(txnID, req.Splits, now)

	if err := validateBalance(splits); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := s.verifyAccountsExist(ctx, splits); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: txnID,
		Num:           req.Num,
		PostDate:      dateOnly(req.PostDate),
		EnterDate:     now,
		Description:   req.Description,
		BusinessType:  req.BusinessType,
		ReferenceNo:   req.ReferenceNo,
		Splits:        splits,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.txnRepo.CreateTransaction(ctx, txn, deltasFor(splits, false)); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", txnID))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txnID),
		slog.Int("split_count", len(splits)))
	return &txn, nil
}

func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for update", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	oldSplits, err := s.txnRepo.FindSplitsByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch splits for update", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to fetch existing splits: %w", err)
	}

	now := time.Now().UTC()
	newSplits := buildSplits(transactionID, req.Splits, now)

	if err := validateBalance(newSplits); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := s.verifyAccountsExist(ctx, newSplits); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		Num:           req.Num,
		PostDate:      dateOnly(req.PostDate),
		EnterDate:     existing.EnterDate,
		Description:   req.Description,
		BusinessType:  req.BusinessType,
		ReferenceNo:   req.ReferenceNo,
		Splits:        newSplits,
		Timestamps: domain.Timestamps{
			CreatedAt: existing.CreatedAt,
			UpdatedAt: now,
		},
	}

	// Two-phase balance maintenance: roll back the old splits, then apply
	// the new ones. Accounts present in both versions see the composed net
	// effect; accounts present in only one version are still adjusted.
	reverseDeltas := deltasFor(oldSplits, true)
	forwardDeltas := deltasFor(newSplits, false)

	if err := s.txnRepo.UpdateTransaction(ctx, txn, reverseDeltas, forwardDeltas); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction updated",
		slog.String("transaction_id", transactionID),
		slog.Int("split_count", len(newSplits)))
	return &txn, nil
}

func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	if _, err := s.txnRepo.FindTransactionByID(ctx, transactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for delete", slog.String("transaction_id", transactionID))
		}
		return err
	}

	oldSplits, err := s.txnRepo.FindSplitsByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch splits for delete", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to fetch existing splits: %w", err)
	}

	if err := s.txnRepo.DeleteTransaction(ctx, transactionID, deltasFor(oldSplits, true)); err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	txns, err := s.txnRepo.ListTransactions(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	splits, err := s.txnRepo.FindSplitsByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch splits", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to fetch splits: %w", err)
	}
	txn.Splits = splits
	return txn, nil
}

func (s *ledgerService) ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error) {
	if limit <= 0 {
		limit = 100
	}
	details, err := s.txnRepo.ListSplitDetails(ctx, transactionID, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list split details")
		return nil, fmt.Errorf("failed to list split details: %w", err)
	}
	if details == nil {
		return []domain.SplitDetail{}, nil
	}
	return details, nil
}
