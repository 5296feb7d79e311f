package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres). Repositories
// MUST gracefully accept nil (non-transactional path).
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via tx. It keeps use-case interfaces clean:
// no storage types leak out, and repositories that accept a Tx can run
// SELECT ... FOR UPDATE or tx-bound Exec/Query as needed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
