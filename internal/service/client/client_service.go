package client

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clientflow/internal/repository/db"
)

// ErrNotFound means no client record exists with the given id.
var ErrNotFound = errors.New("client not found")

// ErrUnauthorized means the client belongs to another user.
var ErrUnauthorized = errors.New("client belongs to another user")

var relationshipStages = map[string]bool{
	"new":         true,
	"established": true,
	"difficult":   true,
	"long_term":   true,
}

// Service manages the user's client roster.
type Service struct {
	db db.Database
}

func NewService(database db.Database) *Service {
	return &Service{db: database}
}

// Create adds a client. The relationship stage defaults to "new" when
// omitted and must otherwise be a known stage.
func (s *Service) Create(userID, name, email, company, relationshipStage string) (*db.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("client name is required")
	}
	if relationshipStage == "" {
		relationshipStage = "new"
	}
	if !relationshipStages[relationshipStage] {
		return nil, fmt.Errorf("unknown relationship stage %q", relationshipStage)
	}
	return s.db.CreateClient(userID, name, email, company, relationshipStage)
}

// List returns all of the user's clients.
func (s *Service) List(userID string) ([]db.Client, error) {
	clients, err := s.db.GetClientsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// Get returns one client if it belongs to the user.
func (s *Service) Get(userID, id string) (*db.Client, error) {
	record, err := s.db.GetClient(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrUnauthorized
	}
	return record, nil
}

// Delete removes one client after checking ownership.
func (s *Service) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}
	if err := s.db.DeleteClient(id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
