package history

import (
	"database/sql"
	"errors"
	"fmt"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
)

// ErrNotFound means no history record exists with the given id.
var ErrNotFound = errors.New("history record not found")

// ErrUnauthorized means the record exists but belongs to another user.
var ErrUnauthorized = errors.New("history record belongs to another user")

// Service reads and deletes saved generations, enforcing ownership.
type Service struct {
	db db.Database
}

func NewService(database db.Database) *Service {
	return &Service{db: database}
}

// List returns the user's saved generations, newest first.
func (s *Service) List(userID string) ([]db.ResponseHistory, error) {
	records, err := s.db.GetResponseHistoryByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list response history: %w", err)
	}
	return records, nil
}

// Get returns one record if it belongs to the user.
func (s *Service) Get(userID, id string) (*db.ResponseHistory, error) {
	record, err := s.db.GetResponseHistory(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load response history: %w", err)
	}
	if record.UserID != userID {
		logger.WithComponent("history").WithField("history_id", id).Warn("Cross-user history access denied")
		return nil, ErrUnauthorized
	}
	return record, nil
}

// Delete removes one record after checking ownership.
func (s *Service) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}
	if err := s.db.DeleteResponseHistory(id); err != nil {
		return fmt.Errorf("failed to delete response history: %w", err)
	}
	return nil
}
