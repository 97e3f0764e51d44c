package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pointwallet/backend/internal/models"
)

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Get(ctx context.Context, userID int64) (models.UserPoint, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.UserPoint), args.Bool(1), args.Error(2)
}

func (m *MockAccountStore) Put(ctx context.Context, userID, points, updateMillis int64) (models.UserPoint, error) {
	args := m.Called(ctx, userID, points, updateMillis)
	return args.Get(0).(models.UserPoint), args.Error(1)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Append(ctx context.Context, userID, amount int64, txType models.TransactionType, updateMillis int64) (models.PointHistory, error) {
	args := m.Called(ctx, userID, amount, txType, updateMillis)
	return args.Get(0).(models.PointHistory), args.Error(1)
}

func (m *MockHistoryStore) ListByUser(ctx context.Context, userID int64) ([]models.PointHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PointHistory), args.Error(1)
}
