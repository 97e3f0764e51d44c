package models

import "time"

// TransactionType classifies a point history record.
type TransactionType string

const (
	TransactionCharge TransactionType = "CHARGE"
	TransactionUse    TransactionType = "USE"
)

// UserPoint is an immutable snapshot of a user's point balance.
// Mutations replace the stored snapshot, they never modify one in place.
type UserPoint struct {
	UserID       int64 `json:"userId" db:"user_id" example:"1"`
	Points       int64 `json:"points" db:"points" example:"10000"` // in smallest point unit
	UpdateMillis int64 `json:"updateMillis" db:"update_millis"`    // wall-clock milliseconds
}

// PointHistory is one append-only charge/use record. IDs are assigned by
// the history store and increase monotonically across all users.
type PointHistory struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"userId" db:"user_id"`
	Amount       int64           `json:"amount" db:"amount"`
	Type         TransactionType `json:"type" db:"type"` // CHARGE or USE
	UpdateMillis int64           `json:"updateMillis" db:"update_millis"`
}

// EmptyUserPoint is the snapshot for a user id that has never been seen:
// zero balance, current timestamp. Absence of a stored record and a
// zero-balance account are equivalent.
func EmptyUserPoint(userID int64) UserPoint {
	return UserPoint{
		UserID:       userID,
		Points:       0,
		UpdateMillis: time.Now().UnixMilli(),
	}
}
