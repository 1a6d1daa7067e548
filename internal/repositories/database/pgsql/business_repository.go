package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	"github.com/hxfang/bizledger/internal/models"
	"github.com/hxfang/bizledger/internal/utils/mapping"
)

const documentColumns = `id, doc_type, doc_no, doc_date, partner_name, reference_no, description, currency, total_amount, status, transaction_id, created_at, updated_at`
const documentItemColumns = `id, document_id, line_no, description, memo, debit_account_id, credit_account_id, quantity, unit_price, amount, cashflow_type_id, created_at`

type PgxBusinessRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxBusinessRepository creates a new repository for business documents.
func newPgxBusinessRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.BusinessRepositoryFacade {
	return &PgxBusinessRepository{BaseRepository{Pool: pool}, accountRepo}
}

var _ portsrepo.BusinessRepositoryFacade = (*PgxBusinessRepository)(nil)

// CountDocumentsByTypeAndDate counts documents of one type on one date,
// feeding document number generation.
func (r *PgxBusinessRepository) CountDocumentsByTypeAndDate(ctx context.Context, docType domain.BusinessDocumentType, docDate time.Time) (int, error) {
	query := `SELECT COUNT(id) FROM business_documents WHERE doc_type = $1 AND doc_date = $2;`

	var count int
	if err := r.Pool.QueryRow(ctx, query, string(docType), docDate).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s documents: %w", docType, err)
	}
	return count, nil
}

// CreateDocumentWithTransaction persists the generated ledger transaction,
// the balance deltas, the document and its items in a single database
// transaction. A (doc_type, doc_no) collision maps to ErrDuplicate so the
// service can regenerate the number and retry.
func (r *PgxBusinessRepository) CreateDocumentWithTransaction(ctx context.Context, doc domain.BusinessDocument, txn domain.Transaction, deltas map[string]decimal.Decimal) (*domain.BusinessDocument, error) {
	created := doc
	err := r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := insertTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
		if err := applyDeltasInTx(ctx, tx, r.accountRepo, deltas, txn.UpdatedAt); err != nil {
			return err
		}
		if err := insertSplitsInTx(ctx, tx, txn.Splits); err != nil {
			return err
		}

		m := mapping.ToModelDocument(doc)
		docQuery := `
			INSERT INTO business_documents (doc_type, doc_no, doc_date, partner_name, reference_no, description, currency, total_amount, status, transaction_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id;
		`
		err := tx.QueryRow(ctx, docQuery,
			m.DocType,
			m.DocNo,
			m.DocDate,
			nullableString(m.PartnerName),
			nullableString(m.ReferenceNo),
			nullableString(m.Description),
			m.Currency,
			m.TotalAmount,
			m.Status,
			m.TransactionID,
			m.CreatedAt,
			m.UpdatedAt,
		).Scan(&created.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: document %s/%s already exists", apperrors.ErrDuplicate, m.DocType, m.DocNo)
			}
			return fmt.Errorf("failed to insert business document %s: %w", m.DocNo, err)
		}

		itemQuery := `
			INSERT INTO business_document_items (document_id, line_no, description, memo, debit_account_id, credit_account_id, quantity, unit_price, amount, cashflow_type_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id;
		`
		for i := range doc.Items {
			item := mapping.ToModelDocumentItem(doc.Items[i])
			err := tx.QueryRow(ctx, itemQuery,
				created.ID,
				item.LineNo,
				nullableString(item.Description),
				nullableString(item.Memo),
				item.DebitAccountID,
				item.CreditAccountID,
				item.Quantity,
				item.UnitPrice,
				item.Amount,
				item.CashflowTypeID,
				item.CreatedAt,
			).Scan(&created.Items[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert document item %d: %w", item.LineNo, err)
			}
			created.Items[i].DocumentID = created.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func scanDocument(row pgx.Row) (models.BusinessDocument, error) {
	var m models.BusinessDocument
	var partnerName, referenceNo, description sql.NullString
	err := row.Scan(
		&m.ID,
		&m.DocType,
		&m.DocNo,
		&m.DocDate,
		&partnerName,
		&referenceNo,
		&description,
		&m.Currency,
		&m.TotalAmount,
		&m.Status,
		&m.TransactionID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.BusinessDocument{}, err
	}
	m.PartnerName = partnerName.String
	m.ReferenceNo = referenceNo.String
	m.Description = description.String
	return m, nil
}

func scanDocumentItem(row pgx.Row) (models.BusinessDocumentItem, error) {
	var m models.BusinessDocumentItem
	var description, memo sql.NullString
	err := row.Scan(
		&m.ID,
		&m.DocumentID,
		&m.LineNo,
		&description,
		&memo,
		&m.DebitAccountID,
		&m.CreditAccountID,
		&m.Quantity,
		&m.UnitPrice,
		&m.Amount,
		&m.CashflowTypeID,
		&m.CreatedAt,
	)
	if err != nil {
		return models.BusinessDocumentItem{}, err
	}
	m.Description = description.String
	m.Memo = memo.String
	return m, nil
}

// FindDocumentByID retrieves a document with its items.
func (r *PgxBusinessRepository) FindDocumentByID(ctx context.Context, id int64) (*domain.BusinessDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM business_documents WHERE id = $1;`

	m, err := scanDocument(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find business document %d: %w", id, err)
	}
	doc := mapping.ToDomainDocument(m)

	itemQuery := `SELECT ` + documentItemColumns + ` FROM business_document_items WHERE document_id = $1 ORDER BY line_no, id;`
	rows, err := r.Pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for document %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanDocumentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document item row: %w", err)
		}
		doc.Items = append(doc.Items, mapping.ToDomainDocumentItem(item))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating document item rows: %w", rows.Err())
	}

	return &doc, nil
}

// ListDocuments returns documents of one type, newest first, without items.
func (r *PgxBusinessRepository) ListDocuments(ctx context.Context, docType domain.BusinessDocumentType, limit int) ([]domain.BusinessDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM business_documents WHERE doc_type = $1 ORDER BY doc_date DESC, id DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, string(docType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s documents: %w", docType, err)
	}
	defer rows.Close()

	var docs []domain.BusinessDocument
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business document row: %w", err)
		}
		docs = append(docs, mapping.ToDomainDocument(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating business document rows: %w", rows.Err())
	}

	return docs, nil
}
