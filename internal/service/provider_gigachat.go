package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// GigaChatExtractor is the primary OCR provider: upload the document to
// GigaChat, then ask the vision endpoint to read it.
type GigaChatExtractor struct {
	llm    *LLMService
	logger *zap.Logger
}

func NewGigaChatExtractor(llm *LLMService, logger *zap.Logger) *GigaChatExtractor {
	return &GigaChatExtractor{llm: llm, logger: logger}
}

func (e *GigaChatExtractor) Name() string { return "gigachat-vision" }

func (e *GigaChatExtractor) Supports(mimeType string) bool {
	_, ok := supportedMIMETypes[mimeType]
	return ok
}

func (e *GigaChatExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if e.llm == nil {
		return "", ErrProviderNotConfigured
	}

	ext := supportedMIMETypes[mimeType]
	fileID, err := e.llm.UploadFile(ctx, data, "document"+ext, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	prompt := `Extract all text from this bank wire confirmation document.

Requirements:
1. Return ONLY the text visible in the document, no commentary.
2. Keep amounts, exchange rates, fee lines, dates, and reference numbers
   exactly as printed.
3. Preserve structure: headings, label/value pairs, tables as rows.
4. If the document is empty or unreadable, return an empty string.`

	return e.llm.ExtractTextViaVisionAPI(ctx, fileID, prompt)
}
