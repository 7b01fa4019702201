package postgres

import (
	"fmt"
	"time"

	"advice-app/internal/logger"
	"advice-app/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateMessage adds a message to an advice session
func (p *PostgresDB) CreateMessage(sessionID, role, content string) (*db.Message, error) {
	msgID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO advice_messages (id, session_id, role, content)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := p.conn.QueryRow(query, msgID, sessionID, role, content).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"message_id": msgID,
		"session_id": sessionID,
		"role":       role,
	}).Debug("Created advice message")

	return &db.Message{
		ID:        msgID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// UpdateMessageContent overwrites a message's content with the current
// accumulated text. Called at checkpoint cadence during streaming, so content
// only ever grows.
func (p *PostgresDB) UpdateMessageContent(messageID, content string) error {
	result, err := p.conn.Exec(`UPDATE advice_messages SET content = $1 WHERE id = $2`, content, messageID)
	if err != nil {
		return fmt.Errorf("error updating message content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return db.ErrNotFound
	}
	return nil
}

// GetSessionMessages retrieves all messages for a session in creation order
func (p *PostgresDB) GetSessionMessages(sessionID string) ([]db.Message, error) {
	query := `
	SELECT id, session_id, role, content, created_at
	FROM advice_messages
	WHERE session_id = $1
	ORDER BY created_at ASC
	`
	rows, err := p.conn.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []db.Message
	for rows.Next() {
		var msg db.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
