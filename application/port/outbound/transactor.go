package outbound

import "context"

// Transactor demarcates a unit of work. Repositories called with the context
// passed to fn take part in it when the adapter supports transactions.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
