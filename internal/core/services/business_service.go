package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/utils/amounts"
)

// docNoPrefixes maps each document type to its number prefix.
var docNoPrefixes = map[domain.BusinessDocumentType]string{
	domain.DocSale:     "XS",
	domain.DocPurchase: "CG",
	domain.DocExpense:  "FY",
	domain.DocCashflow: "SF",
}

const defaultCurrency = "CNY"

// docNoRetries bounds regeneration attempts when a generated document
// number collides under concurrent posting.
const docNoRetries = 3

// businessService implements BusinessSvcFacade. Each document item expands
// into a debit/credit split pair; the document and its generated
// transaction are committed atomically by the repository.
type businessService struct {
	BaseService
	businessRepo portsrepo.BusinessRepositoryFacade
	cashflowRepo portsrepo.CashflowTypeReader
	accountRepo  portsrepo.AccountReader
}

// NewBusinessService creates a new business document service.
func NewBusinessService(
	businessRepo portsrepo.BusinessRepositoryFacade,
	cashflowRepo portsrepo.CashflowTypeReader,
	accountRepo portsrepo.AccountReader,
) portssvc.BusinessSvcFacade {
	return &businessService{
		businessRepo: businessRepo,
		cashflowRepo: cashflowRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.BusinessSvcFacade = (*businessService)(nil)

func (s *businessService) PostBusinessDocument(ctx context.Context, req dto.CreateBusinessDocumentRequest, docType domain.BusinessDocumentType) (*domain.BusinessDocument, error) {
	if _, ok := docNoPrefixes[docType]; !ok {
		return nil, fmt.Errorf("%w: unknown document type %q", apperrors.ErrValidation, docType)
	}

	accountsMap, err := s.loadItemAccounts(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if err := s.verifyCashflowTypes(ctx, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req.DocDate = dateOnly(req.DocDate)
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	explicitDocNo := strings.TrimSpace(req.DocNo)
	docNo := explicitDocNo
	if docNo == "" {
		docNo, err = s.generateDocNo(ctx, docType, req.DocDate, 0)
		if err != nil {
			return nil, err
		}
	}

	// A collision on a generated number means another posting claimed the
	// same sequence slot between the count and the insert; regenerate and
	// retry. A caller-supplied duplicate is reported as-is.
	var created *domain.BusinessDocument
	for attempt := 0; ; attempt++ {
		doc, txn, deltas, buildErr := s.buildDocument(req, docType, docNo, currency, accountsMap, now)
		if buildErr != nil {
			return nil, buildErr
		}
		created, err = s.businessRepo.CreateDocumentWithTransaction(ctx, doc, txn, deltas)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) && explicitDocNo == "" && attempt < docNoRetries {
			docNo, err = s.generateDocNo(ctx, docType, req.DocDate, attempt+1)
			if err != nil {
				return nil, err
			}
			continue
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: document number %s already exists for %s", apperrors.ErrDuplicate, docNo, docType)
		}
		s.LogError(ctx, err, "Failed to save business document",
			slog.String("doc_type", string(docType)),
			slog.String("doc_no", docNo))
		return nil, fmt.Errorf("failed to save business document: %w", err)
	}

	s.LogInfo(ctx, "Business document posted",
		slog.String("doc_type", string(docType)),
		slog.String("doc_no", created.DocNo),
		slog.String("transaction_id", created.TransactionID),
		slog.Int("item_count", len(created.Items)))
	return created, nil
}

// buildDocument assembles the document, its generated transaction and the
// balance deltas. Every item produces a positive split against the debit
// account and a negative split against the credit account.
func (s *businessService) buildDocument(
	req dto.CreateBusinessDocumentRequest,
	docType domain.BusinessDocumentType,
	docNo string,
	currency string,
	accountsMap map[string]domain.Account,
	now time.Time,
) (domain.BusinessDocument, domain.Transaction, map[string]decimal.Decimal, error) {
	txnID := newGUID()
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s document %s", docType, docNo)
	}

	splits := make([]domain.Split, 0, len(req.Items)*2)
	items := make([]domain.BusinessDocumentItem, len(req.Items))
	total := decimal.Zero

	for i, item := range req.Items {
		if !item.Amount.IsPositive() {
			return domain.BusinessDocument{}, domain.Transaction{}, nil,
				fmt.Errorf("%w: item %d amount must be positive", apperrors.ErrValidation, i+1)
		}
		num, denom := amounts.ToFraction(item.Amount)
		amount := amounts.FromFraction(num, denom)

		memo := item.Memo
		if memo == "" {
			memo = description
		}
		cashflowTypeID := item.CashflowTypeID
		if cashflowTypeID == nil {
			cashflowTypeID = req.CashflowTypeID
		}

		debitAccount := accountsMap[item.DebitAccountID]
		creditAccount := accountsMap[item.CreditAccountID]
		if err := requireCashflowType(debitAccount, cashflowTypeID); err != nil {
			return domain.BusinessDocument{}, domain.Transaction{}, nil, err
		}
		if err := requireCashflowType(creditAccount, cashflowTypeID); err != nil {
			return domain.BusinessDocument{}, domain.Transaction{}, nil, err
		}

		splits = append(splits,
			domain.Split{
				SplitID:        newGUID(),
				TransactionID:  txnID,
				AccountID:      item.DebitAccountID,
				Amount:         amount,
				Memo:           memo,
				ReconcileState: domain.ReconcileNone,
				CashflowTypeID: cashflowTypeID,
				CreatedAt:      now,
			},
			domain.Split{
				SplitID:        newGUID(),
				TransactionID:  txnID,
				AccountID:      item.CreditAccountID,
				Amount:         amount.Neg(),
				Memo:           memo,
				ReconcileState: domain.ReconcileNone,
				CashflowTypeID: cashflowTypeID,
				CreatedAt:      now,
			},
		)

		lineNo := item.LineNo
		if lineNo == 0 {
			lineNo = i + 1
		}
		items[i] = domain.BusinessDocumentItem{
			LineNo:          lineNo,
			Description:     item.Description,
			Memo:            item.Memo,
			DebitAccountID:  item.DebitAccountID,
			CreditAccountID: item.CreditAccountID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Amount:          amount,
			CashflowTypeID:  cashflowTypeID,
			CreatedAt:       now,
		}
		total = total.Add(amount)
	}

	txn := domain.Transaction{
		TransactionID: txnID,
		Num:           docNo,
		PostDate:      req.DocDate,
		EnterDate:     now,
		Description:   description,
		BusinessType:  string(docType),
		ReferenceNo:   req.ReferenceNo,
		Splits:        splits,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	doc := domain.BusinessDocument{
		DocType:       docType,
		DocNo:         docNo,
		DocDate:       req.DocDate,
		PartnerName:   req.PartnerName,
		ReferenceNo:   req.ReferenceNo,
		Description:   req.Description,
		Currency:      currency,
		TotalAmount:   total,
		Status:        "POSTED",
		TransactionID: txnID,
		Items:         items,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	return doc, txn, deltasFor(splits, false), nil
}

// requireCashflowType rejects splits on cash or bank accounts that carry
// no cash-flow classification.
func requireCashflowType(account domain.Account, cashflowTypeID *int64) error {
	if account.IsCash && cashflowTypeID == nil {
		return fmt.Errorf("%w: cash account %s requires a cashflow type", apperrors.ErrValidation, account.Name)
	}
	return nil
}

func (s *businessService) loadItemAccounts(ctx context.Context, items []dto.CreateBusinessDocumentItemRequest) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(items)*2)
	seen := make(map[string]struct{}, len(items)*2)
	for _, item := range items {
		for _, id := range []string{item.DebitAccountID, item.CreditAccountID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	var missing []string
	for _, id := range ids {
		if _, found := accountsMap[id]; !found {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: accounts not found: %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return accountsMap, nil
}

func (s *businessService) verifyCashflowTypes(ctx context.Context, req dto.CreateBusinessDocumentRequest) error {
	ids := make([]int64, 0, len(req.Items)+1)
	seen := make(map[int64]struct{}, len(req.Items)+1)
	collect := func(id *int64) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; !ok {
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}
	collect(req.CashflowTypeID)
	for _, item := range req.Items {
		collect(item.CashflowTypeID)
	}
	if len(ids) == 0 {
		return nil
	}
	typesMap, err := s.cashflowRepo.FindCashflowTypesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch cashflow types: %w", err)
	}
	for _, id := range ids {
		if _, found := typesMap[id]; !found {
			return fmt.Errorf("%w: cashflow type %d not found", apperrors.ErrValidation, id)
		}
	}
	return nil
}

// generateDocNo builds {prefix}-{YYYYMMDD}-{NNN} from the count of same-day
// documents of the same type. The bump parameter advances the sequence on
// retry after a collision.
func (s *businessService) generateDocNo(ctx context.Context, docType domain.BusinessDocumentType, docDate time.Time, bump int) (string, error) {
	count, err := s.businessRepo.CountDocumentsByTypeAndDate(ctx, docType, docDate)
	if err != nil {
		return "", fmt.Errorf("failed to count documents: %w", err)
	}
	return fmt.Sprintf("%s-%s-%03d", docNoPrefixes[docType], docDate.Format("20060102"), count+1+bump), nil
}

func (s *businessService) GetDocumentByID(ctx context.Context, id int64) (*domain.BusinessDocument, error) {
	doc, err := s.businessRepo.FindDocumentByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find business document", slog.Int64("document_id", id))
		}
		return nil, err
	}
	return doc, nil
}

func (s *businessService) ListDocuments(ctx context.Context, docType domain.BusinessDocumentType, limit int) ([]domain.BusinessDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	docs, err := s.businessRepo.ListDocuments(ctx, docType, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list business documents", slog.String("doc_type", string(docType)))
		return nil, fmt.Errorf("failed to list business documents: %w", err)
	}
	if docs == nil {
		return []domain.BusinessDocument{}, nil
	}
	return docs, nil
}

func (s *businessService) ListCashflowTypes(ctx context.Context, activeOnly bool) ([]domain.CashflowType, error) {
	types, err := s.cashflowRepo.ListCashflowTypes(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list cashflow types")
		return nil, fmt.Errorf("failed to list cashflow types: %w", err)
	}
	if types == nil {
		return []domain.CashflowType{}, nil
	}
	return types, nil
}
