package db

// Database is the persistence contract consumed by services and handlers.
// The postgres package provides the production implementation; tests use
// the function-field mock in internal/testutil.
type Database interface {
	// Users
	GetUserByUsername(username string) (*User, error)
	GetUserByID(id string) (*User, error)
	CreateUser(username, email, passwordHash string) (*User, error)

	// Quotas
	GetQuota(userID string) (*Quota, error)
	CreateQuota(userID, tier string, monthlyLimit int) (*Quota, error)
	IncrementQuotaUsage(userID string) error

	// Response history
	CreateResponseHistory(record *ResponseHistory) (*ResponseHistory, error)
	GetResponseHistory(id string) (*ResponseHistory, error)
	GetResponseHistoryByUser(userID string) ([]ResponseHistory, error)
	DeleteResponseHistory(id string) error

	// Clients
	CreateClient(userID, name, email, company, relationshipStage string) (*Client, error)
	GetClient(id string) (*Client, error)
	GetClientsByUser(userID string) ([]Client, error)
	DeleteClient(id string) error

	Close() error
}
