package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"advice-app/internal/config"
	"advice-app/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider implements StreamProvider on top of the go-openai SDK. The
// SDK owns the wire decoding, so this variant is a thin adapter: each Recv
// yields an already-decoded token delta.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	models  *config.ModelsConfig
	advice  *config.AdviceConfig
}

// NewOpenAIProvider creates an OpenAI provider. An empty baseURL uses the
// SDK default endpoint; a custom one targets any OpenAI-compatible service.
func NewOpenAIProvider(apiKey string, adviceConfig *config.AdviceConfig, modelsConfig *config.ModelsConfig) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: adviceConfig.OpenAIBaseURL,
		models:  modelsConfig,
		advice:  adviceConfig,
	}
}

// Stream sends a streaming chat completion request and forwards each decoded
// token delta to onFragment in arrival order.
func (p *OpenAIProvider) Stream(ctx context.Context, prompt Prompt, model string, onFragment func(text string) error) error {
	if p.apiKey == "" {
		return fmt.Errorf("openai API key not configured")
	}
	if model == "" {
		model = p.DefaultModel()
	}

	clientConfig := openai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		clientConfig.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	var messages []openai.ChatCompletionMessage
	for _, msg := range prompt.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: p.advice.MaxTokens,
		Stream:    true,
	}

	logger.Log.WithFields(logrus.Fields{
		"provider":      "openai",
		"model":         model,
		"message_count": len(messages),
	}).Info("Calling OpenAI API (streaming)")

	start := time.Now()
	stream, err := client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return &TransportError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
		}
		return &TransportError{Err: fmt.Errorf("error opening stream: %w", err)}
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &TransportError{Err: fmt.Errorf("error receiving stream chunk: %w", err)}
		}

		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if cbErr := onFragment(choice.Delta.Content); cbErr != nil {
				return cbErr
			}
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"provider": "openai",
		"model":    model,
		"duration": time.Since(start).Seconds(),
	}).Debug("OpenAI stream completed")

	return nil
}

// DefaultModel returns the default OpenAI model from the catalog
func (p *OpenAIProvider) DefaultModel() string {
	return p.models.GetDefaultModel(ProviderOpenAI)
}
