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

const transactionColumns = `transaction_id, num, post_date, enter_date, description, business_type, reference_no, created_at, updated_at`
const splitColumns = `split_id, transaction_id, account_id, value_num, value_denom, memo, reconcile_state, reconcile_date, cashflow_type_id, created_at`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for ledger data.
// The account repository provides row locking and balance delta application
// inside this repository's database transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}, accountRepo}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// insertTransactionInTx inserts the transaction header row.
func insertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		nullableString(m.Num),
		m.PostDate,
		m.EnterDate,
		nullableString(m.Description),
		nullableString(m.BusinessType),
		nullableString(m.ReferenceNo),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// insertSplitsInTx batch-inserts the split rows of a transaction.
func insertSplitsInTx(ctx context.Context, tx pgx.Tx, splits []domain.Split) error {
	if len(splits) == 0 {
		return nil
	}
	query := `
		INSERT INTO splits (` + splitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, split := range splits {
		m := mapping.ToModelSplit(split)
		batch.Queue(query,
			m.SplitID,
			m.TransactionID,
			m.AccountID,
			m.ValueNum,
			m.ValueDenom,
			nullableString(m.Memo),
			m.ReconcileState,
			m.ReconcileDate,
			m.CashflowTypeID,
			m.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert splits for transaction %s: %w", splits[0].TransactionID, err)
	}
	return nil
}

// applyDeltasInTx locks the affected account rows and applies the signed
// balance deltas.
func applyDeltasInTx(ctx context.Context, tx pgx.Tx, accountRepo portsrepo.AccountBalancer, deltas map[string]decimal.Decimal, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	accountIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	if _, err := accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for balance update: %w", err)
	}
	if err := accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, now); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

// mergeDeltaKeys collects the union of account IDs across delta maps.
func mergeDeltaKeys(deltaMaps ...map[string]decimal.Decimal) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, deltas := range deltaMaps {
		for id := range deltas {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// CreateTransaction inserts the transaction with its splits and applies the
// balance deltas, all in one database transaction.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]decimal.Decimal) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := insertTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
		if err := applyDeltasInTx(ctx, tx, r.accountRepo, deltas, txn.UpdatedAt); err != nil {
			return err
		}
		return insertSplitsInTx(ctx, tx, txn.Splits)
	})
}

// UpdateTransaction replaces the split set of an existing transaction.
// Balance maintenance is two-phase: the old splits are rolled back before
// the new ones are applied, with no intermediate commit.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, reverseDeltas, forwardDeltas map[string]decimal.Decimal) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		// Lock the union of affected accounts up front so the two delta
		// passes see a consistent snapshot.
		if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, mergeDeltaKeys(reverseDeltas, forwardDeltas)); err != nil {
			return fmt.Errorf("failed to lock accounts for balance update: %w", err)
		}
		if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, reverseDeltas, txn.UpdatedAt); err != nil {
			return fmt.Errorf("failed to roll back old balances: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM splits WHERE transaction_id = $1;`, txn.TransactionID); err != nil {
			return fmt.Errorf("failed to delete old splits for transaction %s: %w", txn.TransactionID, err)
		}

		m := mapping.ToModelTransaction(txn)
		cmdTag, err := tx.Exec(ctx, `
			UPDATE transactions
			SET num = $2, post_date = $3, description = $4, business_type = $5, reference_no = $6, updated_at = $7
			WHERE transaction_id = $1;
		`,
			m.TransactionID,
			nullableString(m.Num),
			m.PostDate,
			nullableString(m.Description),
			nullableString(m.BusinessType),
			nullableString(m.ReferenceNo),
			m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}

		if err := insertSplitsInTx(ctx, tx, txn.Splits); err != nil {
			return err
		}
		return r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, forwardDeltas, txn.UpdatedAt)
	})
}

// DeleteTransaction removes a transaction with its splits after rolling
// back their balance contribution.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string, reverseDeltas map[string]decimal.Decimal) error {
	now := time.Now().UTC()
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := applyDeltasInTx(ctx, tx, r.accountRepo, reverseDeltas, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM splits WHERE transaction_id = $1;`, transactionID); err != nil {
			return fmt.Errorf("failed to delete splits for transaction %s: %w", transactionID, err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
		if err != nil {
			return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// scanTransaction reads one transaction row. The row must match
// transactionColumns.
func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var num, description, businessType, referenceNo sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&num,
		&m.PostDate,
		&m.EnterDate,
		&description,
		&businessType,
		&referenceNo,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	m.Num = num.String
	m.Description = description.String
	m.BusinessType = businessType.String
	m.ReferenceNo = referenceNo.String
	return m, nil
}

func scanSplit(row pgx.Row) (models.Split, error) {
	var m models.Split
	var memo sql.NullString
	err := row.Scan(
		&m.SplitID,
		&m.TransactionID,
		&m.AccountID,
		&m.ValueNum,
		&m.ValueDenom,
		&memo,
		&m.ReconcileState,
		&m.ReconcileDate,
		&m.CashflowTypeID,
		&m.CreatedAt,
	)
	if err != nil {
		return models.Split{}, err
	}
	m.Memo = memo.String
	return m, nil
}

// FindTransactionByID retrieves a transaction header without its splits.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindSplitsByTransactionID retrieves the splits of a transaction in
// insertion order.
func (r *PgxTransactionRepository) FindSplitsByTransactionID(ctx context.Context, transactionID string) ([]domain.Split, error) {
	query := `SELECT ` + splitColumns + ` FROM splits WHERE transaction_id = $1 ORDER BY created_at, split_id;`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		m, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split row: %w", err)
		}
		splits = append(splits, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating split rows: %w", rows.Err())
	}

	return mapping.ToDomainSplitSlice(splits), nil
}

// ListTransactions returns the most recent transactions with their splits
// attached.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY post_date DESC, enter_date DESC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	var txnIDs []string
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
		txnIDs = append(txnIDs, m.TransactionID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	if len(txns) == 0 {
		return txns, nil
	}

	splitQuery := `SELECT ` + splitColumns + ` FROM splits WHERE transaction_id = ANY($1) ORDER BY created_at, split_id;`
	splitRows, err := r.Pool.Query(ctx, splitQuery, txnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits for transactions: %w", err)
	}
	defer splitRows.Close()

	splitsByTxn := make(map[string][]domain.Split)
	for splitRows.Next() {
		m, err := scanSplit(splitRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split row: %w", err)
		}
		splitsByTxn[m.TransactionID] = append(splitsByTxn[m.TransactionID], mapping.ToDomainSplit(m))
	}
	if splitRows.Err() != nil {
		return nil, fmt.Errorf("error iterating split rows: %w", splitRows.Err())
	}

	for i := range txns {
		txns[i].Splits = splitsByTxn[txns[i].TransactionID]
	}
	return txns, nil
}

// ListSplitDetails returns splits denormalized with account and cashflow
// type names, newest first. When transactionID is empty the whole ledger is
// listed up to limit.
func (r *PgxTransactionRepository) ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error) {
	query := `
		SELECT s.split_id, s.transaction_id, s.account_id, s.value_num, s.value_denom, s.memo, s.reconcile_state, s.reconcile_date, s.cashflow_type_id, s.created_at,
		       a.name, a.account_type, ct.name, t.post_date, t.description
		FROM splits s
		JOIN transactions t ON t.transaction_id = s.transaction_id
		JOIN accounts a ON a.account_id = s.account_id
		LEFT JOIN cashflow_types ct ON ct.id = s.cashflow_type_id
		WHERE ($1 = '' OR s.transaction_id = $1)
		ORDER BY t.post_date DESC, s.created_at DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, transactionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query split details: %w", err)
	}
	defer rows.Close()

	var details []domain.SplitDetail
	for rows.Next() {
		var m models.Split
		var memo, accountName, accountType, cashflowName, txDescription sql.NullString
		var postDate time.Time
		err := rows.Scan(
			&m.SplitID,
			&m.TransactionID,
			&m.AccountID,
			&m.ValueNum,
			&m.ValueDenom,
			&memo,
			&m.ReconcileState,
			&m.ReconcileDate,
			&m.CashflowTypeID,
			&m.CreatedAt,
			&accountName,
			&accountType,
			&cashflowName,
			&postDate,
			&txDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split detail row: %w", err)
		}
		m.Memo = memo.String
		details = append(details, domain.SplitDetail{
			Split:            mapping.ToDomainSplit(m),
			AccountName:      accountName.String,
			AccountType:      accountType.String,
			CashflowTypeName: cashflowName.String,
			PostDate:         postDate,
			TxDescription:    txDescription.String,
		})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating split detail rows: %w", rows.Err())
	}

	return details, nil
}
