package db

import "time"

// AdviceSession represents the single-response critique context attached to a
// subject. At most one live session exists per subject.
type AdviceSession struct {
	ID        string
	UserID    string
	SubjectID string
	Model     string
	CreatedAt time.Time
}

// Message represents a persisted response message in an advice session.
// Content grows in place while the provider stream is live.
type Message struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// UsageLedger represents one user's advice usage counter for one calendar day.
// Rows are created lazily on first use per day and never deleted.
type UsageLedger struct {
	UserID    string
	UsageDate time.Time
	Count     int
	Exempt    bool
}

// ProviderCredential represents a user's stored API key for one provider.
type ProviderCredential struct {
	UserID    string
	Provider  string
	APIKey    string
	CreatedAt time.Time
}
