package doc

import "fmt"

// InvalidTransactionError rejects a transaction before any mutation becomes
// visible: the caller's document is unchanged. Step is the index of the
// failing step within the transaction.
type InvalidTransactionError struct {
	Step int
	Err  error
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction (step %d): %v", e.Step, e.Err)
}

func (e *InvalidTransactionError) Unwrap() error {
	return e.Err
}
