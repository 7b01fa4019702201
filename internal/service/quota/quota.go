package quota

import (
	"errors"
	"fmt"
	"time"

	"advice-app/internal/logger"
	"advice-app/internal/metrics"
	"advice-app/internal/repository/db"

	"github.com/sirupsen/logrus"
)

// ErrQuotaExceeded is returned when a user has exhausted today's allowance.
// Terminal for the request: no retry, no partial session.
var ErrQuotaExceeded = errors.New("daily advice quota exceeded")

// Ledger enforces the per-user daily advice quota. The atomic
// check-and-increment lives in the storage layer; this service owns the
// limit and the exempt semantics.
type Ledger struct {
	db         db.Database
	dailyLimit int
	now        func() time.Time
}

// NewLedger creates a quota ledger with the configured daily limit.
func NewLedger(database db.Database, dailyLimit int) *Ledger {
	return &Ledger{
		db:         database,
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// Reserve atomically consumes one unit of today's allowance. Two concurrent
// reservations can never both succeed once the limit is reached, and no
// reservation is lost or double-counted.
func (l *Ledger) Reserve(userID string) error {
	count, err := l.db.ReserveDailyUsage(userID, l.now(), l.dailyLimit)
	if errors.Is(err, db.ErrQuotaExceeded) {
		metrics.QuotaRejectionsTotal.Inc()
		return ErrQuotaExceeded
	}
	if err != nil {
		return fmt.Errorf("failed to reserve quota: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   count,
		"limit":   l.dailyLimit,
	}).Debug("Reserved advice quota")
	return nil
}

// Remaining returns how many reservations the user has left today. The
// second return value reports an exempt user, whose allowance is unlimited.
func (l *Ledger) Remaining(userID string) (int, bool, error) {
	ledger, err := l.db.GetDailyUsage(userID, l.now())
	if err != nil {
		return 0, false, fmt.Errorf("failed to read usage: %w", err)
	}
	if ledger.Exempt {
		return 0, true, nil
	}

	remaining := l.dailyLimit - ledger.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false, nil
}
