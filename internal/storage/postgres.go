package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pointwallet/backend/internal/models"
)

// PostgresAccountStore backs the balance table with the user_points table.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) Get(ctx context.Context, userID int64) (models.UserPoint, bool, error) {
	var point models.UserPoint
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, points, update_millis
		FROM user_points
		WHERE user_id = $1`, userID).
		Scan(&point.UserID, &point.Points, &point.UpdateMillis)
	if err == sql.ErrNoRows {
		return models.UserPoint{}, false, nil
	}
	if err != nil {
		return models.UserPoint{}, false, fmt.Errorf("%w: get user point: %v", ErrTransientStorage, err)
	}
	return point, true, nil
}

func (s *PostgresAccountStore) Put(ctx context.Context, userID, points, updateMillis int64) (models.UserPoint, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_points (user_id, points, update_millis)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET points = $2, update_millis = $3`,
		userID, points, updateMillis)
	if err != nil {
		return models.UserPoint{}, fmt.Errorf("%w: put user point: %v", ErrTransientStorage, err)
	}
	return models.UserPoint{UserID: userID, Points: points, UpdateMillis: updateMillis}, nil
}

// PostgresHistoryStore backs the history table with point_histories; ids
// come from the table's BIGSERIAL sequence.
type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, userID, amount int64, txType models.TransactionType, updateMillis int64) (models.PointHistory, error) {
	record := models.PointHistory{
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		UpdateMillis: updateMillis,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO point_histories (user_id, amount, type, update_millis)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		userID, amount, string(txType), updateMillis).
		Scan(&record.ID)
	if err != nil {
		return models.PointHistory{}, fmt.Errorf("%w: append history: %v", ErrTransientStorage, err)
	}
	return record, nil
}

func (s *PostgresHistoryStore) ListByUser(ctx context.Context, userID int64) ([]models.PointHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, type, update_millis
		FROM point_histories
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list histories: %v", ErrTransientStorage, err)
	}
	defer rows.Close()

	records := []models.PointHistory{}
	for rows.Next() {
		var record models.PointHistory
		var txType string
		if err := rows.Scan(&record.ID, &record.UserID, &record.Amount, &txType, &record.UpdateMillis); err != nil {
			return nil, fmt.Errorf("%w: scan history: %v", ErrTransientStorage, err)
		}
		record.Type = models.TransactionType(txType)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list histories: %v", ErrTransientStorage, err)
	}
	return records, nil
}
