package postgres

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
)

// GetQuota retrieves the quota record for a user.
func (p *PostgresDB) GetQuota(userID string) (*db.Quota, error) {
	var quota db.Quota
	query := `
	SELECT user_id, tier, usage_count, monthly_limit, updated_at
	FROM quotas
	WHERE user_id = $1
	`

	err := p.conn.QueryRow(query, userID).Scan(&quota.UserID, &quota.Tier, &quota.UsageCount, &quota.MonthlyLimit, &quota.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving quota: %w", err)
	}
	return &quota, nil
}

// CreateQuota creates the quota record for a new user.
func (p *PostgresDB) CreateQuota(userID, tier string, monthlyLimit int) (*db.Quota, error) {
	var updatedAt time.Time
	query := `
	INSERT INTO quotas (user_id, tier, usage_count, monthly_limit)
	VALUES ($1, $2, 0, $3)
	RETURNING updated_at
	`

	if err := p.conn.QueryRow(query, userID, tier, monthlyLimit).Scan(&updatedAt); err != nil {
		return nil, fmt.Errorf("error creating quota: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "tier": tier}).Info("Created quota record")

	return &db.Quota{
		UserID:       userID,
		Tier:         tier,
		UsageCount:   0,
		MonthlyLimit: monthlyLimit,
		UpdatedAt:    updatedAt,
	}, nil
}

// IncrementQuotaUsage commits one unit of usage after a successful
// generation. Billing-cycle resets happen outside this service.
func (p *PostgresDB) IncrementQuotaUsage(userID string) error {
	query := `
	UPDATE quotas
	SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = $1
	`

	result, err := p.conn.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("error incrementing quota usage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking quota update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no quota record for user %s", userID)
	}
	return nil
}
