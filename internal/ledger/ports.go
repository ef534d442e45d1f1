// Package ledger defines the outbound port for the external ledger
// backup. The worker appends every transaction to it asynchronously;
// the API never blocks on it.
package ledger

import (
	"context"

	"fintrack/internal/core"
)

type Appender interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
