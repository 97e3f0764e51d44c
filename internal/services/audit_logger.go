package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Balance   int64     `json:"balance"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogMutation(eventType string, userID, amount, newBalance int64) {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Amount:    amount,
		Balance:   newBalance,
		Status:    "SUCCESS",
	}
	a.log(event)
}

func (a *AuditLogger) LogRejected(eventType string, userID, amount int64, err error) {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Amount:    amount,
		Status:    "REJECTED",
		Details:   map[string]string{"error": err.Error()},
	}
	a.log(event)
}

func (a *AuditLogger) LogError(eventType string, userID, amount int64, err error) {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Amount:    amount,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	}
	a.log(event)
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
