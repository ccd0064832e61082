package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"rateguard/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIExtractor is the secondary OCR provider, used when the primary is
// unavailable or fails. Images go in as base64 data URLs; PDFs are not
// supported by the vision endpoint and are left to the other providers.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIExtractor(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIExtractor {
	e := &OpenAIExtractor{model: cfg.Model, logger: logger}
	if cfg.APIKey != "" {
		e.client = openai.NewClient(cfg.APIKey)
	}
	return e
}

func (e *OpenAIExtractor) Name() string { return "openai-vision" }

func (e *OpenAIExtractor) Supports(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func (e *OpenAIExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if e.client == nil {
		return "", ErrProviderNotConfigured
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract all text from this bank wire confirmation. Return only the document text, keeping amounts, exchange rates, fee lines, and dates exactly as printed. Return an empty string if unreadable.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("openai vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI vision")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if isRefusalMessage(text) {
		return "", fmt.Errorf("model returned refusal: %s", text)
	}

	e.logger.Info("Text extracted via OpenAI vision", zap.Int("text_length", len(text)))
	return text, nil
}
