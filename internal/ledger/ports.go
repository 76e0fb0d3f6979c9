package ledger

import (
	"context"

	"finchat/internal/core"
)

// Ports for outbound ledger adapters. The chat core only reads; writes happen
// in whatever system owns the ledger.
type (
	ProfileReader interface {
		// ReadProfile returns the user's budgets. A user without a stored
		// profile yields a zero profile and a nil error.
		ReadProfile(ctx context.Context, userID string) (core.UserProfile, error)
	}

	TransactionLister interface {
		// ListTransactions returns the user's transactions dated inside w.
		// The zero Window lists every transaction ever recorded.
		ListTransactions(ctx context.Context, userID string, w core.Window) ([]core.Transaction, error)
	}

	// Store is everything the fact engine needs.
	Store interface {
		ProfileReader
		TransactionLister
	}

	// Pinger is implemented by stores that can report reachability.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
