package advice

import (
	"context"

	"advice-app/internal/broadcast"
	"advice-app/internal/logger"
	"advice-app/internal/metrics"
	"advice-app/internal/repository/db"

	"github.com/sirupsen/logrus"
)

// Accumulator owns the growing response text for one advice session. Every
// fragment is broadcast to live subscribers; only every Nth fragment is
// persisted, trading up to N-1 fragments of durable progress on abrupt
// failure against write amplification. Finalize closes the gap with one
// unconditional persist.
//
// An Accumulator belongs to exactly one stream and is not safe for
// concurrent use.
type Accumulator struct {
	database    db.Database
	broadcaster broadcast.Broadcaster
	sessionID   string
	messageID   string
	interval    int

	buffer    []byte
	fragments int
	started   bool
}

// NewAccumulator creates an accumulator for one message row. interval is the
// checkpoint cadence in fragments.
func NewAccumulator(database db.Database, broadcaster broadcast.Broadcaster, sessionID, messageID string, interval int) *Accumulator {
	return &Accumulator{
		database:    database,
		broadcaster: broadcaster,
		sessionID:   sessionID,
		messageID:   messageID,
		interval:    interval,
	}
}

// Started reports whether any non-empty fragment has arrived.
func (a *Accumulator) Started() bool {
	return a.started
}

// Text returns the accumulated response text.
func (a *Accumulator) Text() string {
	return string(a.buffer)
}

// Append adds one fragment to the buffer, broadcasts the running text, and
// persists at checkpoint cadence. Broadcast failures are logged and dropped;
// a persist failure is returned so the stream aborts rather than silently
// diverging from storage.
func (a *Accumulator) Append(ctx context.Context, fragment string) error {
	if fragment == "" {
		return nil
	}
	a.started = true
	a.buffer = append(a.buffer, fragment...)
	a.fragments++
	metrics.FragmentsTotal.Inc()

	if err := a.broadcaster.PublishFragment(ctx, a.sessionID, string(a.buffer)); err != nil {
		logger.Log.WithError(err).WithField("session_id", a.sessionID).Warn("Broadcast failed, continuing")
	}

	if a.fragments%a.interval == 0 {
		if err := a.persist(); err != nil {
			return err
		}
	}
	return nil
}

// Finalize performs the final unconditional persist and announces stream
// end, so the durable record matches the broadcast state.
func (a *Accumulator) Finalize(ctx context.Context) error {
	if err := a.persist(); err != nil {
		return err
	}

	if err := a.broadcaster.PublishFinal(ctx, a.sessionID, string(a.buffer)); err != nil {
		logger.Log.WithError(err).WithField("session_id", a.sessionID).Warn("Final broadcast failed")
	}

	logger.Log.WithFields(logrus.Fields{
		"session_id":     a.sessionID,
		"fragment_count": a.fragments,
		"response_chars": len(a.buffer),
	}).Debug("Finalized advice response")
	return nil
}

func (a *Accumulator) persist() error {
	if err := a.database.UpdateMessageContent(a.messageID, string(a.buffer)); err != nil {
		return err
	}
	metrics.CheckpointsTotal.Inc()
	return nil
}
