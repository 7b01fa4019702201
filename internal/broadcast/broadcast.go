package broadcast

import "context"

// Message kinds published on a session channel.
const (
	KindFragmentAppended = "fragment_appended"
	KindSessionFinalized = "session_finalized"
)

// Payload is the JSON document published to live subscribers of an advice
// session. RunningText carries the full accumulated text so a subscriber that
// misses a message still converges on the next one.
type Payload struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	RunningText string `json:"running_text,omitempty"`
	FinalText   string `json:"final_text,omitempty"`
}

// Broadcaster fans out streaming progress to live subscribers. Delivery is
// best-effort: failures are logged by callers, never retried, because the
// persisted message is the durable source of truth.
type Broadcaster interface {
	PublishFragment(ctx context.Context, sessionID, runningText string) error
	PublishFinal(ctx context.Context, sessionID, finalText string) error
}
