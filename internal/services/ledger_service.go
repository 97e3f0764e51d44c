package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/pointwallet/backend/internal/models"
	"github.com/pointwallet/backend/internal/policy"
	"github.com/pointwallet/backend/internal/storage"
)

// LedgerService owns the charge/use mutation path: read the current
// balance, validate against policy, append a history record, write the
// new balance. The whole sequence runs under a per-user lock, so two
// mutations on the same account can never interleave while mutations on
// different accounts proceed in parallel.
type LedgerService struct {
	accounts storage.AccountStore
	history  storage.HistoryStore
	cache    *storage.BalanceCache // optional, query path only
	audit    *AuditLogger

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex
}

func NewLedgerService(accounts storage.AccountStore, history storage.HistoryStore, cache *storage.BalanceCache) *LedgerService {
	return &LedgerService{
		accounts: accounts,
		history:  history,
		cache:    cache,
		audit:    NewAuditLogger(),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// lockFor returns the mutex governing userID, creating it on first
// access. The creation lock is held only for the map lookup, so exactly
// one mutex ever governs a given user id. Accounts are never deleted, so
// the map only grows with the set of user ids seen.
func (s *LedgerService) lockFor(userID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// currentPoint reads the authoritative snapshot, substituting the
// zero-balance snapshot for a user id that has never been written.
func (s *LedgerService) currentPoint(ctx context.Context, userID int64) (models.UserPoint, error) {
	point, found, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return models.UserPoint{}, err
	}
	if !found {
		return models.EmptyUserPoint(userID), nil
	}
	return point, nil
}

// GetUserPoint returns the current balance snapshot. Unknown user ids get
// a zero-balance snapshot. Reads never take the account lock.
func (s *LedgerService) GetUserPoint(ctx context.Context, userID int64) (models.UserPoint, error) {
	if s.cache != nil {
		if point, found, err := s.cache.Get(ctx, userID); err == nil && found {
			return point, nil
		}
	}

	point, err := s.currentPoint(ctx, userID)
	if err != nil {
		return models.UserPoint{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, point); err != nil {
			log.Printf("[LEDGER] Failed to cache balance for user %d: %v", userID, err)
		}
	}
	return point, nil
}

// GetUserPointHistory lists every charge/use record for the user, most
// recent first (record id descending). Users with no records get an
// empty list.
func (s *LedgerService) GetUserPointHistory(ctx context.Context, userID int64) ([]models.PointHistory, error) {
	records, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// Charge increases the user's balance by amount and records a CHARGE
// transaction. Policy rejections leave balance and history untouched.
func (s *LedgerService) Charge(ctx context.Context, userID, amount int64) (models.UserPoint, error) {
	return s.mutate(ctx, userID, amount, models.TransactionCharge)
}

// Use decreases the user's balance by amount and records a USE
// transaction. A zero-amount use is accepted and recorded.
func (s *LedgerService) Use(ctx context.Context, userID, amount int64) (models.UserPoint, error) {
	return s.mutate(ctx, userID, amount, models.TransactionUse)
}

func (s *LedgerService) mutate(ctx context.Context, userID, amount int64, txType models.TransactionType) (models.UserPoint, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.currentPoint(ctx, userID)
	if err != nil {
		s.audit.LogError(string(txType), userID, amount, err)
		return models.UserPoint{}, err
	}

	var newBalance int64
	switch txType {
	case models.TransactionCharge:
		err = policy.ValidateCharge(current.Points, amount)
		newBalance = current.Points + amount
	case models.TransactionUse:
		err = policy.ValidateUse(current.Points, amount)
		newBalance = current.Points - amount
	}
	if err != nil {
		s.audit.LogRejected(string(txType), userID, amount, err)
		return models.UserPoint{}, err
	}

	now := time.Now().UnixMilli()

	// History first, then the balance. Both writes sit inside the account
	// lock, so no mutation on this account can observe one without the
	// other.
	if _, err := s.history.Append(ctx, userID, amount, txType, now); err != nil {
		s.audit.LogError(string(txType), userID, amount, err)
		return models.UserPoint{}, err
	}

	updated, err := s.accounts.Put(ctx, userID, newBalance, now)
	if err != nil {
		// Fail closed: no retry, no compensation. Retrying without knowing
		// whether the write landed could double-apply the mutation.
		s.audit.LogError(string(txType), userID, amount, err)
		return models.UserPoint{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Printf("[LEDGER] Failed to invalidate cached balance for user %d: %v", userID, err)
		}
	}

	s.audit.LogMutation(string(txType), userID, amount, updated.Points)
	return updated, nil
}
