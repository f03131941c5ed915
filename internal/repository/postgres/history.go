package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
	"clientflow/internal/service/llm"
	"clientflow/internal/stream"
)

// CreateResponseHistory writes one generation result. Context and variants
// are stored as JSONB; the variants array preserves variant-index order.
func (p *PostgresDB) CreateResponseHistory(record *db.ResponseHistory) (*db.ResponseHistory, error) {
	contextJSON, err := json.Marshal(record.Context)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request context: %w", err)
	}
	variantsJSON, err := json.Marshal(record.Variants)
	if err != nil {
		return nil, fmt.Errorf("error marshaling variants: %w", err)
	}

	historyID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO response_history (id, user_id, original_message, context, variants, model, avg_confidence)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at
	`

	err = p.conn.QueryRow(query, historyID, record.UserID, record.OriginalMessage, contextJSON, variantsJSON, record.Model, record.AvgConfidence).Scan(&historyID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating history record: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"history_id": historyID,
		"user_id":    record.UserID,
		"variants":   len(record.Variants),
	}).Info("Created response history record")

	saved := *record
	saved.ID = historyID
	saved.CreatedAt = createdAt
	return &saved, nil
}

// GetResponseHistory retrieves a single history record.
func (p *PostgresDB) GetResponseHistory(id string) (*db.ResponseHistory, error) {
	query := `
	SELECT id, user_id, original_message, context, variants, model, avg_confidence, created_at
	FROM response_history
	WHERE id = $1
	`

	record, err := scanHistoryRow(p.conn.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("error retrieving history record: %w", err)
	}
	return record, nil
}

// GetResponseHistoryByUser retrieves all history records for a user,
// newest first.
func (p *PostgresDB) GetResponseHistoryByUser(userID string) ([]db.ResponseHistory, error) {
	query := `
	SELECT id, user_id, original_message, context, variants, model, avg_confidence, created_at
	FROM response_history
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	defer rows.Close()

	var records []db.ResponseHistory
	for rows.Next() {
		record, err := scanHistoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning history record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// DeleteResponseHistory removes a history record.
func (p *PostgresDB) DeleteResponseHistory(id string) error {
	if _, err := p.conn.Exec(`DELETE FROM response_history WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting history record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryRow(row rowScanner) (*db.ResponseHistory, error) {
	var record db.ResponseHistory
	var contextJSON, variantsJSON []byte

	if err := row.Scan(&record.ID, &record.UserID, &record.OriginalMessage, &contextJSON, &variantsJSON, &record.Model, &record.AvgConfidence, &record.CreatedAt); err != nil {
		return nil, err
	}

	record.Context = llm.RequestContext{}
	if err := json.Unmarshal(contextJSON, &record.Context); err != nil {
		return nil, fmt.Errorf("error unmarshaling request context: %w", err)
	}
	record.Variants = []stream.AccumulatedVariant{}
	if err := json.Unmarshal(variantsJSON, &record.Variants); err != nil {
		return nil, fmt.Errorf("error unmarshaling variants: %w", err)
	}
	return &record, nil
}
