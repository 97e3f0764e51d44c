package storage

import (
	"context"
	"sync"

	"github.com/pointwallet/backend/internal/models"
)

// MemoryAccountStore keeps balance snapshots in a map. It is the default
// backend and safe for concurrent use.
type MemoryAccountStore struct {
	mu     sync.RWMutex
	points map[int64]models.UserPoint
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{points: make(map[int64]models.UserPoint)}
}

func (s *MemoryAccountStore) Get(ctx context.Context, userID int64) (models.UserPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	point, ok := s.points[userID]
	if !ok {
		return models.UserPoint{}, false, nil
	}
	return point, true, nil
}

func (s *MemoryAccountStore) Put(ctx context.Context, userID, points, updateMillis int64) (models.UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point := models.UserPoint{UserID: userID, Points: points, UpdateMillis: updateMillis}
	s.points[userID] = point
	return point, nil
}

// MemoryHistoryStore keeps transaction records in an append-only slice
// with a process-wide monotonic id counter.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records []models.PointHistory
	nextID  int64
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{nextID: 1}
}

func (s *MemoryHistoryStore) Append(ctx context.Context, userID, amount int64, txType models.TransactionType, updateMillis int64) (models.PointHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := models.PointHistory{
		ID:           s.nextID,
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		UpdateMillis: updateMillis,
	}
	s.nextID++
	s.records = append(s.records, record)
	return record, nil
}

func (s *MemoryHistoryStore) ListByUser(ctx context.Context, userID int64) ([]models.PointHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []models.PointHistory{}
	for _, record := range s.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}
