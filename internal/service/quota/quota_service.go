package quota

import (
	"errors"
	"fmt"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
)

// DefaultTier is the tier new accounts start on.
const DefaultTier = "free"

// PremiumTier unlocks the personal style profile in generation.
const PremiumTier = "premium"

var tierLimits = map[string]int{
	"free":    25,
	"pro":     200,
	"premium": 1000,
}

// TierLimit returns the monthly generation limit for a tier.
func TierLimit(tier string) int {
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return tierLimits[DefaultTier]
}

// ErrQuotaExceeded means the user has no generations left this period.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrNoQuotaRecord means no quota row exists for the user.
var ErrNoQuotaRecord = errors.New("quota record not found")

// Service is the quota gate. Reserve is a precondition check, not an
// atomic reservation: the increment happens in settlement after a
// successful generation, which admits a narrow race where two in-flight
// requests both pass the gate. Accepted tradeoff over distributed locking.
type Service struct {
	db db.Database
}

// NewService creates a quota service.
func NewService(database db.Database) *Service {
	return &Service{db: database}
}

// Reserve checks that the user may start a generation. Callers must abort
// before any model call when this fails.
func (s *Service) Reserve(userID string) (*db.Quota, error) {
	record, err := s.db.GetQuota(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoQuotaRecord, err)
	}

	if record.UsageCount >= record.MonthlyLimit {
		logger.Log.WithField("user_id", userID).Info("Generation blocked: quota exhausted")
		return nil, ErrQuotaExceeded
	}
	return record, nil
}

// Usage returns the user's current quota record for introspection.
func (s *Service) Usage(userID string) (*db.Quota, error) {
	record, err := s.db.GetQuota(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoQuotaRecord, err)
	}
	return record, nil
}
