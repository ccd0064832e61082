package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeExtractor struct {
	name    string
	text    string
	err     error
	calls   int
	refuses bool // Supports returns false
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Supports(mimeType string) bool { return !f.refuses }

func (f *fakeExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestChain(providers ...TextExtractor) *ExtractionService {
	return NewExtractionService(providers, 5*1024*1024, 32, zap.NewNop())
}

const readableText = "WIRE TRANSFER CONFIRMATION Amount: 100,000.00 EUR Rate: 1.1120"

func TestExtractionFallbackToSecondary(t *testing.T) {
	primary := &fakeExtractor{name: "primary", err: errors.New("upstream 500")}
	secondary := &fakeExtractor{name: "secondary", text: readableText}

	chain := newTestChain(primary, secondary)
	text, provider, err := chain.ExtractText(context.Background(), []byte("doc"), "image/png")
	if err != nil {
		t.Fatalf("Expected fallback success, got %v", err)
	}
	if provider != "secondary" {
		t.Errorf("Expected secondary provider, got %s", provider)
	}
	if text != readableText {
		t.Errorf("Unexpected text %q", text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("Expected one call each, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestExtractionAllProvidersFail(t *testing.T) {
	primary := &fakeExtractor{name: "primary", err: errors.New("timeout")}
	secondary := &fakeExtractor{name: "secondary", err: errors.New("non-2xx")}

	chain := newTestChain(primary, secondary)
	_, _, err := chain.ExtractText(context.Background(), []byte("doc"), "image/jpeg")
	if !errors.Is(err, ErrDocumentUnreadable) {
		t.Fatalf("Expected ErrDocumentUnreadable, got %v", err)
	}
	if secondary.calls != 1 {
		t.Errorf("Expected secondary invoked exactly once, got %d", secondary.calls)
	}
}

func TestExtractionShortTextTreatedAsFailure(t *testing.T) {
	primary := &fakeExtractor{name: "primary", text: "stub"}
	secondary := &fakeExtractor{name: "secondary", text: "x"}

	chain := newTestChain(primary, secondary)
	_, _, err := chain.ExtractText(context.Background(), []byte("doc"), "image/png")
	if !errors.Is(err, ErrDocumentUnreadable) {
		t.Fatalf("Expected ErrDocumentUnreadable for short text, got %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("Expected each provider tried once, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestExtractionSkipsUnconfiguredProvider(t *testing.T) {
	unconfigured := &fakeExtractor{name: "primary", err: ErrProviderNotConfigured}
	secondary := &fakeExtractor{name: "secondary", text: readableText}

	chain := newTestChain(unconfigured, secondary)
	_, provider, err := chain.ExtractText(context.Background(), []byte("doc"), "image/png")
	if err != nil {
		t.Fatalf("Expected success via secondary, got %v", err)
	}
	if provider != "secondary" {
		t.Errorf("Expected secondary provider, got %s", provider)
	}
}

func TestExtractionSkipsUnsupportedProvider(t *testing.T) {
	pdfOnly := &fakeExtractor{name: "pdf-text", refuses: true}
	vision := &fakeExtractor{name: "vision", text: readableText}

	chain := newTestChain(pdfOnly, vision)
	_, provider, err := chain.ExtractText(context.Background(), []byte("doc"), "image/jpeg")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if provider != "vision" {
		t.Errorf("Expected vision provider, got %s", provider)
	}
	if pdfOnly.calls != 0 {
		t.Errorf("Expected unsupported provider to be skipped, got %d calls", pdfOnly.calls)
	}
}

func TestExtractionRejectsOversizedFile(t *testing.T) {
	provider := &fakeExtractor{name: "primary", text: readableText}
	chain := NewExtractionService([]TextExtractor{provider}, 8, 4, zap.NewNop())

	_, _, err := chain.ExtractText(context.Background(), []byte("way too many bytes"), "image/png")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Expected ErrFileTooLarge, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("Expected no provider call for an oversized file")
	}
}

func TestExtractionRejectsUnsupportedMIME(t *testing.T) {
	provider := &fakeExtractor{name: "primary", text: readableText}
	chain := newTestChain(provider)

	_, _, err := chain.ExtractText(context.Background(), []byte("doc"), "text/html")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("Expected no provider call for an unsupported MIME type")
	}
}
