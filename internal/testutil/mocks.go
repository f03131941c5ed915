package testutil

import (
	"context"
	"errors"

	"clientflow/internal/repository/db"
	"clientflow/internal/service/llm"
)

// MockDatabase implements db.Database with overridable functions. Methods
// without an override return a zero value error so tests only wire what
// they exercise.
type MockDatabase struct {
	GetUserByUsernameFunc        func(username string) (*db.User, error)
	GetUserByIDFunc              func(id string) (*db.User, error)
	CreateUserFunc               func(username, email, passwordHash string) (*db.User, error)
	GetQuotaFunc                 func(userID string) (*db.Quota, error)
	CreateQuotaFunc              func(userID, tier string, monthlyLimit int) (*db.Quota, error)
	IncrementQuotaUsageFunc      func(userID string) error
	CreateResponseHistoryFunc    func(record *db.ResponseHistory) (*db.ResponseHistory, error)
	GetResponseHistoryFunc       func(id string) (*db.ResponseHistory, error)
	GetResponseHistoryByUserFunc func(userID string) ([]db.ResponseHistory, error)
	DeleteResponseHistoryFunc    func(id string) error
	CreateClientFunc             func(userID, name, email, company, relationshipStage string) (*db.Client, error)
	GetClientFunc                func(id string) (*db.Client, error)
	GetClientsByUserFunc         func(userID string) ([]db.Client, error)
	DeleteClientFunc             func(id string) error
}

var errNotWired = errors.New("testutil: method not wired")

func (m *MockDatabase) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetUserByID(id string) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(id)
	}
	return nil, errNotWired
}

func (m *MockDatabase) CreateUser(username, email, passwordHash string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(username, email, passwordHash)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetQuota(userID string) (*db.Quota, error) {
	if m.GetQuotaFunc != nil {
		return m.GetQuotaFunc(userID)
	}
	return nil, errNotWired
}

func (m *MockDatabase) CreateQuota(userID, tier string, monthlyLimit int) (*db.Quota, error) {
	if m.CreateQuotaFunc != nil {
		return m.CreateQuotaFunc(userID, tier, monthlyLimit)
	}
	return nil, errNotWired
}

func (m *MockDatabase) IncrementQuotaUsage(userID string) error {
	if m.IncrementQuotaUsageFunc != nil {
		return m.IncrementQuotaUsageFunc(userID)
	}
	return nil
}

func (m *MockDatabase) CreateResponseHistory(record *db.ResponseHistory) (*db.ResponseHistory, error) {
	if m.CreateResponseHistoryFunc != nil {
		return m.CreateResponseHistoryFunc(record)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetResponseHistory(id string) (*db.ResponseHistory, error) {
	if m.GetResponseHistoryFunc != nil {
		return m.GetResponseHistoryFunc(id)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetResponseHistoryByUser(userID string) ([]db.ResponseHistory, error) {
	if m.GetResponseHistoryByUserFunc != nil {
		return m.GetResponseHistoryByUserFunc(userID)
	}
	return nil, errNotWired
}

func (m *MockDatabase) DeleteResponseHistory(id string) error {
	if m.DeleteResponseHistoryFunc != nil {
		return m.DeleteResponseHistoryFunc(id)
	}
	return errNotWired
}

func (m *MockDatabase) CreateClient(userID, name, email, company, relationshipStage string) (*db.Client, error) {
	if m.CreateClientFunc != nil {
		return m.CreateClientFunc(userID, name, email, company, relationshipStage)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetClient(id string) (*db.Client, error) {
	if m.GetClientFunc != nil {
		return m.GetClientFunc(id)
	}
	return nil, errNotWired
}

func (m *MockDatabase) GetClientsByUser(userID string) ([]db.Client, error) {
	if m.GetClientsByUserFunc != nil {
		return m.GetClientsByUserFunc(userID)
	}
	return nil, errNotWired
}

func (m *MockDatabase) DeleteClient(id string) error {
	if m.DeleteClientFunc != nil {
		return m.DeleteClientFunc(id)
	}
	return errNotWired
}

func (m *MockDatabase) Close() error { return nil }

// MockProvider implements llm.Provider with overridable functions.
type MockProvider struct {
	StreamDraftFunc  func(ctx context.Context, req llm.DraftRequest) (<-chan llm.StreamChunk, error)
	DefaultModelFunc func() string
}

func (m *MockProvider) StreamDraft(ctx context.Context, req llm.DraftRequest) (<-chan llm.StreamChunk, error) {
	if m.StreamDraftFunc != nil {
		return m.StreamDraftFunc(ctx, req)
	}
	return nil, errNotWired
}

func (m *MockProvider) DefaultModel() string {
	if m.DefaultModelFunc != nil {
		return m.DefaultModelFunc()
	}
	return "anthropic/claude-3.5-sonnet"
}

// ChunkStream builds a closed channel pre-loaded with the given chunks,
// mimicking a provider stream that has fully arrived.
func ChunkStream(chunks ...llm.StreamChunk) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}
