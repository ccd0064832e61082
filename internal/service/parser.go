package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rateguard/internal/models"

	"go.uber.org/zap"
)

// WireConfirmation is the fixed extraction schema. Missing fields stay at
// their zero values so a degraded calculation can still run downstream.
type WireConfirmation struct {
	BankName       string           `json:"bank_name"`
	Sender         string           `json:"sender"`
	Beneficiary    string           `json:"beneficiary"`
	OriginalAmount float64          `json:"original_amount"`
	CurrencyPair   string           `json:"currency_pair"`
	BankRate       float64          `json:"bank_rate"`
	ValueDate      string           `json:"value_date"`
	FeeItems       []models.FeeItem `json:"fee_items"`
}

// ParserService turns extracted document text into a WireConfirmation via
// the LLM.
type ParserService struct {
	llm    *LLMService
	logger *zap.Logger
}

func NewParserService(llm *LLMService, logger *zap.Logger) *ParserService {
	return &ParserService{llm: llm, logger: logger}
}

// ParseWireConfirmation asks the model for the fixed JSON schema and coerces
// its answer. Text shorter than a plausible confirmation is rejected up
// front.
func (s *ParserService) ParseWireConfirmation(ctx context.Context, extractedText string) (*WireConfirmation, error) {
	if s.llm == nil {
		return nil, ErrProviderNotConfigured
	}
	extractedText = strings.TrimSpace(extractedText)
	if len(extractedText) < 10 {
		return nil, fmt.Errorf("%w: extracted text too short", ErrDocumentUnreadable)
	}

	prompt := fmt.Sprintf(`Analyze the following text from a bank wire confirmation and extract the transaction fields.

IMPORTANT: Return ONLY a valid JSON object, no commentary, no markdown fencing.

Document text:
%s

Return JSON in exactly this shape:
{
  "bank_name": "issuing bank name",
  "sender": "ordering party",
  "beneficiary": "receiving party",
  "original_amount": number (source amount, positive),
  "currency_pair": "BASE/QUOTE in ISO 4217, e.g. EUR/USD",
  "bank_rate": number (the exchange rate the bank applied),
  "value_date": "YYYY-MM-DD",
  "fee_items": [{"name": "fee description", "amount": number}]
}

RULES:
- Use null or 0 for fields that are not present; never invent values.
- fee_items lists itemized charges only, not the exchange-rate spread.
- If the text contains no wire transfer at all, return {}`, extractedText)

	content, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	confirmation, err := ParseWireConfirmationJSON(content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wire confirmation parsed",
		zap.String("bank", confirmation.BankName),
		zap.String("pair", confirmation.CurrencyPair),
		zap.Float64("amount", confirmation.OriginalAmount),
		zap.Int("fee_items", len(confirmation.FeeItems)),
	)

	return confirmation, nil
}

// ParseWireConfirmationJSON coerces a model response into the schema. The
// model sometimes wraps JSON in markdown fences or prepends commentary, so
// the object is located positionally before unmarshaling.
func ParseWireConfirmationJSON(content string) (*WireConfirmation, error) {
	content = strings.TrimSpace(content)

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		lower := strings.ToLower(content)
		if strings.Contains(lower, "no data") ||
			strings.Contains(lower, "no transaction") ||
			strings.Contains(lower, "not a wire") ||
			strings.Contains(lower, "does not contain") {
			return &WireConfirmation{}, nil
		}
		return nil, fmt.Errorf("invalid response format: %s", content)
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	var confirmation WireConfirmation
	if err := json.Unmarshal([]byte(jsonStr), &confirmation); err != nil {
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		if err := json.Unmarshal([]byte(jsonStr), &confirmation); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w, content: %s", err, content)
		}
	}

	confirmation.BankName = sanitizeUTF8(confirmation.BankName)
	confirmation.Sender = sanitizeUTF8(confirmation.Sender)
	confirmation.Beneficiary = sanitizeUTF8(confirmation.Beneficiary)
	confirmation.CurrencyPair = NormalizePair(confirmation.CurrencyPair)
	for i := range confirmation.FeeItems {
		confirmation.FeeItems[i].Name = sanitizeUTF8(confirmation.FeeItems[i].Name)
	}

	return &confirmation, nil
}

// NormalizePair uppercases a currency pair and coerces common separators to
// the canonical BASE/QUOTE form. Unrecognizable input is returned uppercased
// as-is.
func NormalizePair(pair string) string {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return ""
	}

	for _, sep := range []string{"/", "-", "_", " "} {
		if parts := strings.Split(pair, sep); len(parts) == 2 &&
			len(parts[0]) == 3 && len(parts[1]) == 3 {
			return parts[0] + "/" + parts[1]
		}
	}
	if len(pair) == 6 {
		return pair[:3] + "/" + pair[3:]
	}
	return pair
}
