package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
)

// CreateUser creates a new user with a pre-hashed password.
func (p *PostgresDB) CreateUser(username, email, passwordHash string) (*db.User, error) {
	userID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`

	err := p.conn.QueryRow(query, userID, username, email, passwordHash).Scan(&userID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "username": username}).Info("Created new user")

	return &db.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// GetUserByUsername retrieves a user by username.
func (p *PostgresDB) GetUserByUsername(username string) (*db.User, error) {
	var user db.User
	query := `
	SELECT id, username, COALESCE(email, ''), password_hash, COALESCE(communication_style, ''), created_at
	FROM users
	WHERE username = $1
	`

	err := p.conn.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CommunicationStyle, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by id.
func (p *PostgresDB) GetUserByID(id string) (*db.User, error) {
	var user db.User
	query := `
	SELECT id, username, COALESCE(email, ''), password_hash, COALESCE(communication_style, ''), created_at
	FROM users
	WHERE id = $1
	`

	err := p.conn.QueryRow(query, id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CommunicationStyle, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &user, nil
}
