// Package storage provides the account balance table and the append-only
// point history table behind the ledger. Backends only promise that a
// single key's read-then-write and a single append are individually
// consistent; the ledger's per-account lock provides the rest.
package storage

import (
	"context"
	"errors"

	"github.com/pointwallet/backend/internal/models"
)

// ErrTransientStorage wraps every backend read/write failure. Callers may
// retry at their own discretion; the ledger never retries.
var ErrTransientStorage = errors.New("transient storage error")

// AccountStore is the key-value table of balance snapshots keyed by user id.
type AccountStore interface {
	// Get returns the stored snapshot for userID, with found=false when the
	// user has never been written.
	Get(ctx context.Context, userID int64) (point models.UserPoint, found bool, err error)
	// Put upserts the balance snapshot for userID and returns it.
	Put(ctx context.Context, userID, points, updateMillis int64) (models.UserPoint, error)
}

// HistoryStore is the append-only record store of charge/use transactions.
type HistoryStore interface {
	// Append writes one immutable record and assigns its id. IDs increase
	// monotonically across all users but need not be gap-free.
	Append(ctx context.Context, userID, amount int64, txType models.TransactionType, updateMillis int64) (models.PointHistory, error)
	// ListByUser returns every record for userID in unspecified order.
	ListByUser(ctx context.Context, userID int64) ([]models.PointHistory, error)
}
