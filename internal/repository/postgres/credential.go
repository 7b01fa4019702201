package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"advice-app/internal/repository/db"
)

// GetProviderCredential retrieves the stored API key for a user/provider pair
func (p *PostgresDB) GetProviderCredential(userID, provider string) (*db.ProviderCredential, error) {
	var cred db.ProviderCredential
	query := `
	SELECT user_id, provider, api_key, created_at
	FROM user_credentials
	WHERE user_id = $1 AND provider = $2
	`
	err := p.conn.QueryRow(query, userID, provider).Scan(&cred.UserID, &cred.Provider, &cred.APIKey, &cred.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving credential: %w", err)
	}
	return &cred, nil
}
