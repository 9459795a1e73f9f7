package shared

import "context"

// TransactionManager runs a function atomically. Repositories called with
// the context passed to fn join the same transaction; the implementation
// decides how the transaction travels (the gorm implementation carries it on
// the context).
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactionManager runs fn without any transaction. Useful in tests.
type NopTransactionManager struct{}

func (NopTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
