package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrDocumentUnreadable means every provider in the chain failed or
	// returned text too short to analyze.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrProviderNotConfigured marks a provider skipped for missing
	// credentials rather than a genuine upstream failure.
	ErrProviderNotConfigured = errors.New("extraction provider not configured")
	// ErrUnsupportedFormat is returned for MIME types outside the accepted
	// image/PDF set.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrFileTooLarge is returned before any network call when the upload
	// exceeds the configured ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// TextExtractor is one OCR/vision capability in the fallback chain. Providers
// own their transport and error types; the chain owns the ordering.
type TextExtractor interface {
	Name() string
	Supports(mimeType string) bool
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// supportedMIMETypes is the accepted upload surface.
var supportedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type ExtractionService struct {
	providers   []TextExtractor
	maxFileSize int64
	minText     int
	logger      *zap.Logger
}

// NewExtractionService builds the extraction chain. Providers are tried in
// the order given; the first one returning enough text wins.
func NewExtractionService(providers []TextExtractor, maxFileSize int64, minText int, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		providers:   providers,
		maxFileSize: maxFileSize,
		minText:     minText,
		logger:      logger,
	}
}

// ExtractText runs the provider chain over a raw document and returns the
// extracted text plus the name of the provider that produced it.
func (s *ExtractionService) ExtractText(ctx context.Context, data []byte, mimeType string) (string, string, error) {
	if int64(len(data)) > s.maxFileSize {
		return "", "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), s.maxFileSize)
	}
	if _, ok := supportedMIMETypes[mimeType]; !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	var failures []error
	for _, provider := range s.providers {
		if !provider.Supports(mimeType) {
			continue
		}

		text, err := provider.ExtractText(ctx, data, mimeType)
		if err != nil {
			if errors.Is(err, ErrProviderNotConfigured) {
				s.logger.Debug("Extraction provider skipped",
					zap.String("provider", provider.Name()),
				)
			} else {
				s.logger.Warn("Extraction provider failed",
					zap.String("provider", provider.Name()),
					zap.Error(err),
				)
			}
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		text = strings.TrimSpace(text)
		if len(text) < s.minText {
			s.logger.Warn("Extraction provider returned too little text",
				zap.String("provider", provider.Name()),
				zap.Int("length", len(text)),
			)
			failures = append(failures, fmt.Errorf("%s: extracted %d bytes, need %d", provider.Name(), len(text), s.minText))
			continue
		}

		s.logger.Info("Text extracted",
			zap.String("provider", provider.Name()),
			zap.Int("text_length", len(text)),
		)
		return text, provider.Name(), nil
	}

	return "", "", errors.Join(ErrDocumentUnreadable, errors.Join(failures...))
}

// MaxFileSize exposes the upload ceiling for handler-side validation.
func (s *ExtractionService) MaxFileSize() int64 {
	return s.maxFileSize
}
