package advice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"advice-app/internal/broadcast"
	"advice-app/internal/config"
	"advice-app/internal/logger"
	"advice-app/internal/metrics"
	"advice-app/internal/repository/db"
	"advice-app/internal/service/llm"
	"advice-app/internal/service/quota"
	"advice-app/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Configuration errors, surfaced distinctly from quota errors so the caller
// can be directed to settings rather than "try again tomorrow".
var (
	ErrNoCredential = errors.New("no credential stored for any available provider")
	ErrNoModel      = errors.New("no available model for this provider")
)

// Request contains all parameters for one advice request
type Request struct {
	SubjectID string
	UserID    string
	Model     string // optional override, must exist in the catalog
	Title     string
	Content   string
	CharLimit int // optional, zero means unconstrained
}

// Service orchestrates the advice streaming workflow: validation, credential
// and model resolution, quota reservation, session replacement, prompt
// construction, stream driving, and finalization.
type Service struct {
	db          db.Database
	appConfig   *config.AppConfig
	quota       *quota.Ledger
	broadcaster broadcast.Broadcaster
	validator   *validation.AdviceRequestValidator

	// newProvider is swappable in tests
	newProvider func(provider, apiKey string, appConfig *config.AppConfig) (llm.StreamProvider, error)
}

// NewService creates an advice orchestration service
func NewService(database db.Database, appConfig *config.AppConfig, quotaLedger *quota.Ledger, broadcaster broadcast.Broadcaster) *Service {
	return &Service{
		db:          database,
		appConfig:   appConfig,
		quota:       quotaLedger,
		broadcaster: broadcaster,
		validator:   validation.NewAdviceRequestValidator(),
		newProvider: llm.NewProvider,
	}
}

// ValidateRequest runs the synchronous input validation. Everything past
// this point happens as background work.
func (s *Service) ValidateRequest(req Request) error {
	return s.validator.ValidateAdviceRequest(req.Title, req.Content, req.CharLimit)
}

// Run executes the full advice workflow for one request. It is intended to
// run as one background goroutine per request; each step fails fast into a
// reported error. Once the response message exists, finalization is
// guaranteed even when the stream fails, so partial output is never lost.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := s.ValidateRequest(req); err != nil {
		return err
	}

	provider, model, apiKey, err := s.resolveProviderAndModel(req.UserID, req.Model)
	if err != nil {
		return err
	}

	// Quota is reserved before any session or provider work, so a rejected
	// request leaves no trace
	if err := s.quota.Reserve(req.UserID); err != nil {
		return err
	}

	session, err := s.db.ReplaceAdviceSession(req.UserID, req.SubjectID, model)
	if err != nil {
		return fmt.Errorf("failed to replace advice session: %w", err)
	}

	prompt := BuildPrompt(req.Title, req.Content, req.CharLimit)

	message, err := s.db.CreateMessage(session.ID, llm.RoleAssistant, "")
	if err != nil {
		return fmt.Errorf("failed to create response message: %w", err)
	}

	streamClient, err := s.newProvider(provider, apiKey, s.appConfig)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	accumulator := NewAccumulator(s.db, s.broadcaster, session.ID, message.ID, s.appConfig.Advice.CheckpointInterval)

	logger.Log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"subject_id": req.SubjectID,
		"user_id":    req.UserID,
		"provider":   provider,
		"model":      model,
	}).Info("Starting advice stream")

	start := time.Now()
	streamErr := streamClient.Stream(ctx, prompt, model, func(text string) error {
		return accumulator.Append(ctx, text)
	})
	metrics.StreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	// The final persist runs regardless of stream outcome, so whatever text
	// arrived before a failure stays durable
	if finErr := accumulator.Finalize(ctx); finErr != nil {
		logger.Log.WithError(finErr).WithField("session_id", session.ID).Error("Failed to finalize advice response")
		if streamErr == nil {
			streamErr = finErr
		}
	}

	if streamErr != nil {
		metrics.StreamsTotal.WithLabelValues(provider, "error").Inc()
		var transportErr *llm.TransportError
		if errors.As(streamErr, &transportErr) {
			logger.Log.WithFields(logrus.Fields{
				"session_id": session.ID,
				"status":     transportErr.StatusCode,
				"body":       transportErr.Body,
			}).Error("Provider stream failed")
		}
		return fmt.Errorf("advice stream failed: %w", streamErr)
	}

	metrics.StreamsTotal.WithLabelValues(provider, "ok").Inc()
	logger.Log.WithFields(logrus.Fields{
		"session_id":     session.ID,
		"response_chars": len(accumulator.Text()),
	}).Info("Advice stream completed")
	return nil
}

// resolveProviderAndModel resolves which provider, model, and credential to
// use. A caller-supplied model pins the provider; otherwise the first
// catalog provider the user holds a credential for wins, with its default
// model. Missing credential and missing model are configuration errors.
func (s *Service) resolveProviderAndModel(userID, modelOverride string) (provider, model, apiKey string, err error) {
	models := s.appConfig.Models

	if modelOverride != "" {
		entry := models.GetModel(modelOverride)
		if entry == nil {
			return "", "", "", fmt.Errorf("%w: unknown model %q", ErrNoModel, modelOverride)
		}
		cred, credErr := s.db.GetProviderCredential(userID, entry.Provider)
		if errors.Is(credErr, db.ErrNotFound) {
			return "", "", "", fmt.Errorf("%w: provider %s", ErrNoCredential, entry.Provider)
		}
		if credErr != nil {
			return "", "", "", fmt.Errorf("failed to resolve credential: %w", credErr)
		}
		return entry.Provider, entry.ID, cred.APIKey, nil
	}

	for _, candidate := range models.Providers() {
		cred, credErr := s.db.GetProviderCredential(userID, candidate)
		if errors.Is(credErr, db.ErrNotFound) {
			continue
		}
		if credErr != nil {
			return "", "", "", fmt.Errorf("failed to resolve credential: %w", credErr)
		}

		defaultModel := models.GetDefaultModel(candidate)
		if defaultModel == "" {
			return "", "", "", fmt.Errorf("%w: provider %s", ErrNoModel, candidate)
		}
		return candidate, defaultModel, cred.APIKey, nil
	}

	return "", "", "", ErrNoCredential
}

// ClearSession destroys the live advice session for a subject, if any.
func (s *Service) ClearSession(subjectID string) error {
	return s.db.DeleteAdviceSessionBySubject(subjectID)
}

// SessionMessages returns the persisted messages of the live session for a
// subject, for page reload after a crash mid-stream.
func (s *Service) SessionMessages(subjectID string) (*db.AdviceSession, []db.Message, error) {
	session, err := s.db.GetAdviceSessionBySubject(subjectID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.db.GetSessionMessages(session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session messages: %w", err)
	}
	return session, messages, nil
}
