package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"advice-app/internal/logger"
	"advice-app/internal/repository/db"

	"github.com/sirupsen/logrus"
)

// ReserveDailyUsage atomically checks and increments a user's daily advice
// counter. The row lock taken by SELECT ... FOR UPDATE spans both the limit
// check and the increment, so concurrent reservations for the same user
// serialize and the counter can never pass the limit.
//
// Returns the count after reservation, or db.ErrQuotaExceeded when the
// counter is already at the limit. Exempt users succeed without incrementing.
func (p *PostgresDB) ReserveDailyUsage(userID string, day time.Time, limit int) (int, error) {
	usageDate := day.Format("2006-01-02")

	tx, err := p.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Lazily create the row for this user/day
	insertQuery := `
	INSERT INTO usage_ledgers (user_id, usage_date, count)
	VALUES ($1, $2, 0)
	ON CONFLICT (user_id, usage_date) DO NOTHING
	`
	if _, err := tx.Exec(insertQuery, userID, usageDate); err != nil {
		return 0, fmt.Errorf("error creating usage ledger row: %w", err)
	}

	var count int
	var exempt bool
	lockQuery := `
	SELECT count, exempt FROM usage_ledgers
	WHERE user_id = $1 AND usage_date = $2
	FOR UPDATE
	`
	if err := tx.QueryRow(lockQuery, userID, usageDate).Scan(&count, &exempt); err != nil {
		return 0, fmt.Errorf("error locking usage ledger row: %w", err)
	}

	if exempt {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("error committing usage reservation: %w", err)
		}
		logger.Log.WithField("user_id", userID).Debug("Exempt user, usage not counted")
		return count, nil
	}

	if count >= limit {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"count":   count,
			"limit":   limit,
		}).Info("Daily advice quota exceeded")
		return count, db.ErrQuotaExceeded
	}

	updateQuery := `
	UPDATE usage_ledgers SET count = count + 1
	WHERE user_id = $1 AND usage_date = $2
	`
	if _, err := tx.Exec(updateQuery, userID, usageDate); err != nil {
		return 0, fmt.Errorf("error incrementing usage counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing usage reservation: %w", err)
	}

	return count + 1, nil
}

// GetDailyUsage retrieves a user's usage ledger row for a day. A missing row
// reads as count zero, since rows are created lazily on first use.
func (p *PostgresDB) GetDailyUsage(userID string, day time.Time) (*db.UsageLedger, error) {
	usageDate := day.Format("2006-01-02")

	ledger := db.UsageLedger{UserID: userID, UsageDate: day}
	query := `
	SELECT count, exempt FROM usage_ledgers
	WHERE user_id = $1 AND usage_date = $2
	`
	err := p.conn.QueryRow(query, userID, usageDate).Scan(&ledger.Count, &ledger.Exempt)
	if errors.Is(err, sql.ErrNoRows) {
		return &ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading usage ledger: %w", err)
	}
	return &ledger, nil
}
