package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"advice-app/internal/logger"
	"advice-app/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReplaceAdviceSession atomically replaces any existing advice session for a
// subject with a fresh one. Deleting the prior session cascades to its
// messages, so only one response row is ever live per subject.
func (p *PostgresDB) ReplaceAdviceSession(userID, subjectID, model string) (*db.AdviceSession, error) {
	tx, err := p.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM advice_sessions WHERE subject_id = $1`, subjectID); err != nil {
		return nil, fmt.Errorf("error deleting previous session: %w", err)
	}

	sessionID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO advice_sessions (id, user_id, subject_id, model)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := tx.QueryRow(query, sessionID, userID, subjectID, model).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("error creating advice session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing session replacement: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"subject_id": subjectID,
		"user_id":    userID,
		"model":      model,
	}).Info("Created advice session")

	return &db.AdviceSession{
		ID:        sessionID,
		UserID:    userID,
		SubjectID: subjectID,
		Model:     model,
		CreatedAt: createdAt,
	}, nil
}

// GetAdviceSessionBySubject retrieves the live session for a subject
func (p *PostgresDB) GetAdviceSessionBySubject(subjectID string) (*db.AdviceSession, error) {
	var session db.AdviceSession
	query := `
	SELECT id, user_id, subject_id, model, created_at
	FROM advice_sessions
	WHERE subject_id = $1
	`
	err := p.conn.QueryRow(query, subjectID).Scan(&session.ID, &session.UserID, &session.SubjectID, &session.Model, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving advice session: %w", err)
	}
	return &session, nil
}

// DeleteAdviceSessionBySubject removes the live session for a subject, if any
func (p *PostgresDB) DeleteAdviceSessionBySubject(subjectID string) error {
	result, err := p.conn.Exec(`DELETE FROM advice_sessions WHERE subject_id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("error deleting advice session: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		logger.Log.WithField("subject_id", subjectID).Info("Cleared advice session")
	}
	return nil
}
