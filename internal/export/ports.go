package export

import (
	"context"

	"nestegg/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// LedgerAppender appends a transaction row to an external ledger.
	LedgerAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
