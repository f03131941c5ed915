package db

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"clientflow/internal/service/llm"
	"clientflow/internal/stream"
)

// User represents a freelancer account.
type User struct {
	ID                 string
	Username           string
	Email              string
	PasswordHash       string
	CommunicationStyle string // style profile, applied only on the premium tier
	CreatedAt          time.Time
}

// VerifyPassword checks a plaintext password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Quota is the per-user usage counter for the current billing period.
// usage_count <= monthly_limit is enforced as a precondition to generation,
// not as a constraint on the stored value.
type Quota struct {
	UserID       string
	Tier         string
	UsageCount   int
	MonthlyLimit int
	UpdatedAt    time.Time
}

// Remaining returns the number of generations left in the period.
func (q *Quota) Remaining() int {
	if q.UsageCount >= q.MonthlyLimit {
		return 0
	}
	return q.MonthlyLimit - q.UsageCount
}

// ResponseHistory is one persisted generation: the request that produced it
// and the full reconstructed variants, ordered by variant index. Immutable
// once written.
type ResponseHistory struct {
	ID              string
	UserID          string
	OriginalMessage string
	Context         llm.RequestContext
	Variants        []stream.AccumulatedVariant
	Model           string
	AvgConfidence   float64
	CreatedAt       time.Time
}

// Client is a CRM record for one of the freelancer's clients.
type Client struct {
	ID                string
	UserID            string
	Name              string
	Email             string
	Company           string
	RelationshipStage string
	CreatedAt         time.Time
}
