package repositories

import "context"

// TxFn is a function executed within a transaction. Repositories called
// inside it automatically pick up the transaction from the context.
type TxFn func(ctx context.Context) error

// TransactionManager runs functions within a database transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
