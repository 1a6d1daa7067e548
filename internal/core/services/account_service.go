package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
)

// newGUID generates a 32-character hex entity id.
func newGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// accountService implements the AccountSvcFacade interface. It owns the
// chart of accounts; balances are mutated exclusively by the ledger.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context, includeHidden bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, includeHidden)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	existing, err := s.accountRepo.FindAccountByName(ctx, req.Name)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for duplicate account name", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to check account name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account name %q already exists", apperrors.ErrValidation, req.Name)
	}

	parentID := ""
	if req.ParentID != nil && *req.ParentID != "" {
		parentID = *req.ParentID
		if _, err := s.accountRepo.FindAccountByID(ctx, parentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parentID)
			}
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", parentID))
			return nil, fmt.Errorf("failed to validate parent account: %w", err)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      newGUID(),
		Name:           req.Name,
		AccountType:    req.AccountType,
		ParentID:       parentID,
		Code:           req.Code,
		Description:    req.Description,
		Hidden:         req.Hidden,
		Placeholder:    req.Placeholder,
		IsCash:         req.IsCash,
		CurrentBalance: decimal.Zero,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("name", account.Name))
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != account.Name {
		existing, err := s.accountRepo.FindAccountByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check account name: %w", err)
		}
		if existing != nil && existing.AccountID != accountID {
			return nil, fmt.Errorf("%w: account name %q already exists", apperrors.ErrValidation, *req.Name)
		}
		account.Name = *req.Name
		updated = true
	}
	if req.ParentID != nil {
		newParent := *req.ParentID
		if newParent == accountID {
			return nil, fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
		}
		if newParent != "" {
			if err := s.checkParentCycle(ctx, accountID, newParent); err != nil {
				return nil, err
			}
		}
		account.ParentID = newParent
		updated = true
	}
	if req.AccountType != nil {
		account.AccountType = *req.AccountType
		updated = true
	}
	if req.Code != nil {
		account.Code = *req.Code
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.Hidden != nil {
		account.Hidden = *req.Hidden
		updated = true
	}
	if req.Placeholder != nil {
		account.Placeholder = *req.Placeholder
		updated = true
	}
	if req.IsCash != nil {
		account.IsCash = *req.IsCash
		updated = true
	}

	if !updated {
		s.LogDebug(ctx, "No fields provided for account update", slog.String("account_id", accountID))
		return account, nil
	}

	account.UpdatedAt = time.Now().UTC()
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// checkParentCycle walks the ancestor chain of the proposed parent and
// rejects the reparenting if accountID appears anywhere along it.
func (s *accountService) checkParentCycle(ctx context.Context, accountID, newParentID string) error {
	currentID := newParentID
	for currentID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, currentID)
			}
			return fmt.Errorf("failed to walk account ancestors: %w", err)
		}
		if parent.AccountID == accountID {
			return fmt.Errorf("%w: setting parent %s would create a cycle in the account hierarchy", apperrors.ErrValidation, newParentID)
		}
		currentID = parent.ParentID
	}
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_id", accountID))
		return fmt.Errorf("failed to check child accounts: %w", err)
	}
	if len(children) > 0 {
		names := make([]string, len(children))
		for i, child := range children {
			names[i] = child.Name
		}
		return fmt.Errorf("%w: account has child accounts and cannot be deleted. Children: %s",
			apperrors.ErrValidation, strings.Join(names, ", "))
	}

	if !account.CurrentBalance.IsZero() {
		return fmt.Errorf("%w: account balance is not zero (current balance: %s) and cannot be deleted",
			apperrors.ErrValidation, account.CurrentBalance.String())
	}

	hasSplits, err := s.accountRepo.HasSplits(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check account splits", slog.String("account_id", accountID))
		return fmt.Errorf("failed to check account usage: %w", err)
	}
	if hasSplits {
		return fmt.Errorf("%w: account has ledger entries and cannot be deleted; hide the account instead",
			apperrors.ErrValidation)
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deleted successfully", slog.String("account_id", accountID))
	return nil
}
