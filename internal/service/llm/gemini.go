package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"advice-app/internal/config"
	"advice-app/internal/logger"

	"github.com/sirupsen/logrus"
)

// GeminiProvider implements StreamProvider against the Gemini REST API
// directly: chunked HTTP POST with an SSE-framed response body, decoded
// incrementally by sseDecoder.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	models  *config.ModelsConfig
	advice  *config.AdviceConfig
	client  *http.Client
}

// NewGeminiProvider creates a Gemini provider with bounded connect and read
// timeouts. The read timeout covers the whole streaming response, so it is
// set generously.
func NewGeminiProvider(apiKey string, adviceConfig *config.AdviceConfig, modelsConfig *config.ModelsConfig) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: adviceConfig.GeminiBaseURL,
		models:  modelsConfig,
		advice:  adviceConfig,
		client: &http.Client{
			Timeout: adviceConfig.ReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: adviceConfig.ConnectTimeout,
				}).DialContext,
			},
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// mapRole translates logical roles into the Gemini vocabulary. Gemini has no
// system role, so system messages travel as user turns.
func mapRole(role string) string {
	switch role {
	case RoleAssistant:
		return "model"
	case RoleSystem:
		return "user"
	default:
		return "user"
	}
}

// Stream opens the streaming request and feeds the response body through the
// incremental SSE decoder until EOF.
func (p *GeminiProvider) Stream(ctx context.Context, prompt Prompt, model string, onFragment func(text string) error) error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}
	if model == "" {
		model = p.DefaultModel()
	}

	var contents []geminiContent
	for _, msg := range prompt.Messages {
		contents = append(contents, geminiContent{
			Role:  mapRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	reqBody := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: p.advice.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	logger.Log.WithFields(logrus.Fields{
		"provider":      "gemini",
		"model":         model,
		"message_count": len(contents),
	}).Info("Calling Gemini API (streaming)")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	decoder := newSSEDecoder(onFragment)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := decoder.Feed(buf[:n]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &TransportError{Err: fmt.Errorf("error reading stream: %w", readErr)}
		}
	}

	if err := decoder.Finish(); err != nil {
		// Callback errors pass through untouched; decode exhaustion
		// escalates with the captured body as diagnostic detail
		var te *TransportError
		if errors.As(err, &te) {
			return err
		}
		if decoder.emitted {
			return err
		}
		return &TransportError{Body: decoder.rawBody.String(), Err: err}
	}

	logger.Log.WithFields(logrus.Fields{
		"provider": "gemini",
		"model":    model,
		"duration": time.Since(start).Seconds(),
	}).Debug("Gemini stream completed")

	return nil
}

// DefaultModel returns the default Gemini model from the catalog
func (p *GeminiProvider) DefaultModel() string {
	return p.models.GetDefaultModel(ProviderGemini)
}
