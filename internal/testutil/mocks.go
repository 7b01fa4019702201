package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"advice-app/internal/config"
	"advice-app/internal/repository/db"
	"advice-app/internal/service/llm"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// Session mocks
	ReplaceAdviceSessionFunc      func(userID, subjectID, model string) (*db.AdviceSession, error)
	GetAdviceSessionBySubjectFunc func(subjectID string) (*db.AdviceSession, error)
	DeleteAdviceSessionBySubjectFunc func(subjectID string) error

	// Message mocks
	CreateMessageFunc        func(sessionID, role, content string) (*db.Message, error)
	UpdateMessageContentFunc func(messageID, content string) error
	GetSessionMessagesFunc   func(sessionID string) ([]db.Message, error)

	// Usage mocks
	ReserveDailyUsageFunc func(userID string, day time.Time, limit int) (int, error)
	GetDailyUsageFunc     func(userID string, day time.Time) (*db.UsageLedger, error)

	// Credential mocks
	GetProviderCredentialFunc func(userID, provider string) (*db.ProviderCredential, error)
}

func (m *MockDatabase) ReplaceAdviceSession(userID, subjectID, model string) (*db.AdviceSession, error) {
	if m.ReplaceAdviceSessionFunc != nil {
		return m.ReplaceAdviceSessionFunc(userID, subjectID, model)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetAdviceSessionBySubject(subjectID string) (*db.AdviceSession, error) {
	if m.GetAdviceSessionBySubjectFunc != nil {
		return m.GetAdviceSessionBySubjectFunc(subjectID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) DeleteAdviceSessionBySubject(subjectID string) error {
	if m.DeleteAdviceSessionBySubjectFunc != nil {
		return m.DeleteAdviceSessionBySubjectFunc(subjectID)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) CreateMessage(sessionID, role, content string) (*db.Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(sessionID, role, content)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) UpdateMessageContent(messageID, content string) error {
	if m.UpdateMessageContentFunc != nil {
		return m.UpdateMessageContentFunc(messageID, content)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) GetSessionMessages(sessionID string) ([]db.Message, error) {
	if m.GetSessionMessagesFunc != nil {
		return m.GetSessionMessagesFunc(sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) ReserveDailyUsage(userID string, day time.Time, limit int) (int, error) {
	if m.ReserveDailyUsageFunc != nil {
		return m.ReserveDailyUsageFunc(userID, day, limit)
	}
	return 0, errors.New("not implemented")
}

func (m *MockDatabase) GetDailyUsage(userID string, day time.Time) (*db.UsageLedger, error) {
	if m.GetDailyUsageFunc != nil {
		return m.GetDailyUsageFunc(userID, day)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetProviderCredential(userID, provider string) (*db.ProviderCredential, error) {
	if m.GetProviderCredentialFunc != nil {
		return m.GetProviderCredentialFunc(userID, provider)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) Close() error {
	return nil
}

// InMemoryLedgerStore emulates the storage-side reservation semantics: one
// lock per (user, day) row spanning the limit check and the increment. Used
// to exercise the quota service under concurrency without a real database.
type InMemoryLedgerStore struct {
	MockDatabase

	mu      sync.Mutex
	Counts  map[string]int
	Exempts map[string]bool
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		Counts:  make(map[string]int),
		Exempts: make(map[string]bool),
	}
}

func ledgerKey(userID string, day time.Time) string {
	return userID + "/" + day.Format("2006-01-02")
}

func (s *InMemoryLedgerStore) ReserveDailyUsage(userID string, day time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey(userID, day)
	if s.Exempts[key] {
		return s.Counts[key], nil
	}
	if s.Counts[key] >= limit {
		return s.Counts[key], db.ErrQuotaExceeded
	}
	s.Counts[key]++
	return s.Counts[key], nil
}

func (s *InMemoryLedgerStore) GetDailyUsage(userID string, day time.Time) (*db.UsageLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey(userID, day)
	return &db.UsageLedger{
		UserID:    userID,
		UsageDate: day,
		Count:     s.Counts[key],
		Exempt:    s.Exempts[key],
	}, nil
}

// MockBroadcaster records published payloads for assertions
type MockBroadcaster struct {
	mu        sync.Mutex
	Fragments []string
	Finals    []string

	PublishFragmentErr error
	PublishFinalErr    error
}

func (b *MockBroadcaster) PublishFragment(ctx context.Context, sessionID, runningText string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Fragments = append(b.Fragments, runningText)
	return b.PublishFragmentErr
}

func (b *MockBroadcaster) PublishFinal(ctx context.Context, sessionID, finalText string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Finals = append(b.Finals, finalText)
	return b.PublishFinalErr
}

// MockStreamProvider is a mock implementation of llm.StreamProvider
type MockStreamProvider struct {
	StreamFunc       func(ctx context.Context, prompt llm.Prompt, model string, onFragment func(text string) error) error
	DefaultModelFunc func() string
}

func (m *MockStreamProvider) Stream(ctx context.Context, prompt llm.Prompt, model string, onFragment func(text string) error) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, model, onFragment)
	}
	return errors.New("not implemented")
}

func (m *MockStreamProvider) DefaultModel() string {
	if m.DefaultModelFunc != nil {
		return m.DefaultModelFunc()
	}
	return "mock-model"
}

// NewTestModelsConfig builds an in-memory model catalog for tests
func NewTestModelsConfig(models []config.Model) *config.ModelsConfig {
	return config.NewModelsConfigFromModels(models)
}
