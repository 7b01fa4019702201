package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"advice-app/internal/app"
	"advice-app/internal/config"
	"advice-app/internal/logger"
	"advice-app/internal/repository/db"
	adviceService "advice-app/internal/service/advice"
	"advice-app/internal/service/quota"
	"advice-app/pkg/validation"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Request/Response types

type AdviceRequest struct {
	Model     string `json:"model,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CharLimit int    `json:"char_limit,omitempty"`
}

type SubmitResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type MessageData struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type SessionResponse struct {
	SessionID string        `json:"session_id"`
	Model     string        `json:"model"`
	Messages  []MessageData `json:"messages"`
}

type UsageResponse struct {
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

type ModelsResponse struct {
	Models []config.Model `json:"models"`
}

// AdviceHandlers exposes the advice pipeline over HTTP
type AdviceHandlers struct {
	config    *app.Config
	validator *validation.AdviceRequestValidator
	advice    *adviceService.Service
	quota     *quota.Ledger
}

// NewAdviceHandlers creates handlers backed by the advice service layer
func NewAdviceHandlers(appCfg *app.Config, service *adviceService.Service, quotaLedger *quota.Ledger) *AdviceHandlers {
	return &AdviceHandlers{
		config:    appCfg,
		validator: validation.NewAdviceRequestValidator(),
		advice:    service,
		quota:     quotaLedger,
	}
}

// SubmitAdviceHandler accepts an advice request, validates it synchronously,
// and runs the streaming workflow as background work. The caller only learns
// "submitted"; progress arrives over the broadcast channel.
func (h *AdviceHandlers) SubmitAdviceHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateAdviceRequest(req.Title, req.Content, req.CharLimit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	request := adviceService.Request{
		SubjectID: subjectID,
		UserID:    userID,
		Model:     req.Model,
		Title:     req.Title,
		Content:   req.Content,
		CharLimit: req.CharLimit,
	}

	// One background goroutine per request; the stream must not block the
	// submitting caller
	go func() {
		if err := h.advice.Run(context.Background(), request); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"subject_id": subjectID,
				"user_id":    userID,
			}).Error("Advice request failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, SubmitResponse{Status: "submitted"})
}

// GetAdviceHandler returns the persisted session messages for a subject, the
// reload path for viewers joining mid-stream or after a crash.
func (h *AdviceHandlers) GetAdviceHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	session, messages, err := h.advice.SessionMessages(subjectID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no advice session for this subject")
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("subject_id", subjectID).Error("Failed to load advice session")
		writeError(w, http.StatusInternalServerError, "failed to load advice session")
		return
	}

	resp := SessionResponse{SessionID: session.ID, Model: session.Model}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageData{
			ID:        msg.ID,
			SessionID: msg.SessionID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteAdviceHandler explicitly clears the advice session for a subject
func (h *AdviceHandlers) DeleteAdviceHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	if err := h.advice.ClearSession(subjectID); err != nil {
		logger.Log.WithError(err).WithField("subject_id", subjectID).Error("Failed to clear advice session")
		writeError(w, http.StatusInternalServerError, "failed to clear advice session")
		return
	}
	writeJSON(w, http.StatusOK, SubmitResponse{Status: "cleared"})
}

// GetUsageHandler returns the caller's remaining daily allowance
func (h *AdviceHandlers) GetUsageHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	remaining, unlimited, err := h.quota.Remaining(userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to read usage")
		writeError(w, http.StatusInternalServerError, "failed to read usage")
		return
	}
	writeJSON(w, http.StatusOK, UsageResponse{Remaining: remaining, Unlimited: unlimited})
}

// GetModelsHandler returns the model catalog
func (h *AdviceHandlers) GetModelsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{Models: h.config.ModelsConfig().GetAvailableModels()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, SubmitResponse{Status: "error", Error: message})
}
