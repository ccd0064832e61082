package service

import (
	"context"
	"fmt"
	"strings"

	"rateguard/internal/models"

	"go.uber.org/zap"
)

// AdvisoryService drafts a short dispute note for quotes whose spread
// crossed the dispute threshold. Drafting is best-effort: when the LLM is
// unavailable or refuses, the quote simply ships without an advisory.
type AdvisoryService struct {
	llm    *LLMService
	logger *zap.Logger
}

func NewAdvisoryService(llm *LLMService, logger *zap.Logger) *AdvisoryService {
	return &AdvisoryService{
		llm:    llm,
		logger: logger,
	}
}

// DraftDisputeNote produces a short, bank-ready note the customer can send
// to contest the markup. Returns an empty string when no advisory could be
// drafted.
func (s *AdvisoryService) DraftDisputeNote(ctx context.Context, quote *models.Quote) string {
	if s.llm == nil || !quote.DisputeRecommended {
		return ""
	}

	prompt := buildAdvisoryPrompt(quote)
	content, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("advisory draft failed",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		return ""
	}

	content = strings.TrimSpace(sanitizeUTF8(content))
	if content == "" || isRefusalMessage(content) {
		return ""
	}
	return content
}

func buildAdvisoryPrompt(quote *models.Quote) string {
	var sb strings.Builder
	sb.WriteString("Draft a short, professional note (3-5 sentences) the customer can send to their bank to dispute the exchange-rate markup on a wire transfer.\n\n")
	sb.WriteString("Transaction facts:\n")
	fmt.Fprintf(&sb, "- Bank: %s\n", quote.BankName)
	fmt.Fprintf(&sb, "- Currency pair: %s\n", quote.CurrencyPair)
	fmt.Fprintf(&sb, "- Amount: %.2f\n", quote.OriginalAmount)
	fmt.Fprintf(&sb, "- Bank rate applied: %.4f\n", quote.BankRate)
	fmt.Fprintf(&sb, "- Mid-market rate: %.4f\n", quote.MidMarketRate)
	fmt.Fprintf(&sb, "- Spread: %.2f%%\n", quote.SpreadPercentage)
	fmt.Fprintf(&sb, "- Estimated hidden cost: %.2f\n", quote.TotalHiddenCost)
	sb.WriteString("\nReference the mid-market rate and ask for a fee review. Plain text only, no placeholders.")
	return sb.String()
}
