package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFTextExtractor pulls embedded text straight out of a PDF with go-fitz.
// It runs before the vision providers: digital confirmations carry their text
// layer and never need an OCR round-trip. Scanned PDFs come back empty and
// fall through to the next provider.
type PDFTextExtractor struct {
	logger *zap.Logger
}

func NewPDFTextExtractor(logger *zap.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{logger: logger}
}

func (e *PDFTextExtractor) Name() string { return "pdf-text" }

func (e *PDFTextExtractor) Supports(mimeType string) bool {
	return mimeType == "application/pdf"
}

func (e *PDFTextExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	// go-fitz opens from a path; stage the bytes in a temp file.
	tmpFile, err := os.CreateTemp("", "rateguard-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	doc, err := fitz.New(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text layer in PDF")
	}

	e.logger.Info("PDF text extracted",
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
