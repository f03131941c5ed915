package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
)

// CreateClient creates a CRM client record.
func (p *PostgresDB) CreateClient(userID, name, email, company, relationshipStage string) (*db.Client, error) {
	if relationshipStage == "" {
		relationshipStage = "new"
	}

	clientID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO clients (id, user_id, name, email, company, relationship_stage)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`

	err := p.conn.QueryRow(query, clientID, userID, name, email, company, relationshipStage).Scan(&clientID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"client_id": clientID, "user_id": userID}).Info("Created client record")

	return &db.Client{
		ID:                clientID,
		UserID:            userID,
		Name:              name,
		Email:             email,
		Company:           company,
		RelationshipStage: relationshipStage,
		CreatedAt:         createdAt,
	}, nil
}

// GetClient retrieves a single client record.
func (p *PostgresDB) GetClient(id string) (*db.Client, error) {
	var client db.Client
	query := `
	SELECT id, user_id, name, COALESCE(email, ''), COALESCE(company, ''), relationship_stage, created_at
	FROM clients
	WHERE id = $1
	`

	err := p.conn.QueryRow(query, id).Scan(&client.ID, &client.UserID, &client.Name, &client.Email, &client.Company, &client.RelationshipStage, &client.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving client: %w", err)
	}
	return &client, nil
}

// GetClientsByUser retrieves all client records for a user.
func (p *PostgresDB) GetClientsByUser(userID string) ([]db.Client, error) {
	query := `
	SELECT id, user_id, name, COALESCE(email, ''), COALESCE(company, ''), relationship_stage, created_at
	FROM clients
	WHERE user_id = $1
	ORDER BY name ASC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying clients: %w", err)
	}
	defer rows.Close()

	var clients []db.Client
	for rows.Next() {
		var client db.Client
		if err := rows.Scan(&client.ID, &client.UserID, &client.Name, &client.Email, &client.Company, &client.RelationshipStage, &client.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// DeleteClient removes a client record.
func (p *PostgresDB) DeleteClient(id string) error {
	if _, err := p.conn.Exec(`DELETE FROM clients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting client: %w", err)
	}
	return nil
}
