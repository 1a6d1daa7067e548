package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

// stubTx implements pgx.Tx with a configurable rollback result. The embedded
// interface covers the methods these tests never reach.
type stubTx struct {
	pgx.Tx
	rollbackErr error
}

func (s *stubTx) Rollback(ctx context.Context) error { return s.rollbackErr }

func TestRollbackIgnoresAlreadyClosedTx(t *testing.T) {
	// pgx reports pgx.ErrTxClosed when rolling back a committed transaction;
	// the deferred rollback in runInTx hits this on every success path.
	repo := &BaseRepository{}
	err := repo.Rollback(context.Background(), &stubTx{rollbackErr: pgx.ErrTxClosed})
	assert.NoError(t, err)
}

func TestRollbackReportsRealFailure(t *testing.T) {
	repo := &BaseRepository{}
	cause := errors.New("connection reset")
	err := repo.Rollback(context.Background(), &stubTx{rollbackErr: cause})
	assert.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
