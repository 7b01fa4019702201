package db

import (
	"errors"
	"time"
)

// ErrQuotaExceeded is returned by ReserveDailyUsage when the user's counter is
// already at the daily limit.
var ErrQuotaExceeded = errors.New("daily advice quota exceeded")

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Database defines the interface for storage operations
type Database interface {
	// Advice sessions
	ReplaceAdviceSession(userID, subjectID, model string) (*AdviceSession, error)
	GetAdviceSessionBySubject(subjectID string) (*AdviceSession, error)
	DeleteAdviceSessionBySubject(subjectID string) error

	// Messages
	CreateMessage(sessionID, role, content string) (*Message, error)
	UpdateMessageContent(messageID, content string) error
	GetSessionMessages(sessionID string) ([]Message, error)

	// Usage ledger
	ReserveDailyUsage(userID string, day time.Time, limit int) (int, error)
	GetDailyUsage(userID string, day time.Time) (*UsageLedger, error)

	// Provider credentials
	GetProviderCredential(userID, provider string) (*ProviderCredential, error)

	Close() error
}
