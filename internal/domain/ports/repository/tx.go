package repository

import (
	"context"
)

// Tx is an opaque transaction handle. The concrete type is infra-defined
// (pgx.Tx for Postgres). Repositories accept a nil Tx for the
// non-transactional path.
type Tx interface{}

// TransactionManager runs fn inside a database transaction, passing the
// underlying handle through tx. It keeps use-case and transaction-step code
// free of storage-specific transaction types.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
