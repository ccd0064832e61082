package service

import "testing"

func TestParseWireConfirmationJSON(t *testing.T) {
	content := `{
		"bank_name": "First National",
		"sender": "Acme GmbH",
		"beneficiary": "Acme Inc",
		"original_amount": 100000,
		"currency_pair": "EUR/USD",
		"bank_rate": 1.1120,
		"value_date": "2026-08-14",
		"fee_items": [{"name": "wire fee", "amount": 35}]
	}`

	confirmation, err := ParseWireConfirmationJSON(content)
	if err != nil {
		t.Fatalf("Expected parse success, got %v", err)
	}
	if confirmation.BankName != "First National" {
		t.Errorf("Expected bank name 'First National', got %q", confirmation.BankName)
	}
	if confirmation.OriginalAmount != 100000 {
		t.Errorf("Expected amount 100000, got %f", confirmation.OriginalAmount)
	}
	if confirmation.BankRate != 1.1120 {
		t.Errorf("Expected rate 1.1120, got %f", confirmation.BankRate)
	}
	if len(confirmation.FeeItems) != 1 || confirmation.FeeItems[0].Amount != 35 {
		t.Errorf("Expected one 35.00 fee item, got %v", confirmation.FeeItems)
	}
}

func TestParseWireConfirmationJSONMarkdownFences(t *testing.T) {
	content := "Here is the extracted data:\n```json\n{\"bank_name\": \"Chase\", \"currency_pair\": \"usd/jpy\", \"bank_rate\": 148.2}\n```"

	confirmation, err := ParseWireConfirmationJSON(content)
	if err != nil {
		t.Fatalf("Expected parse success, got %v", err)
	}
	if confirmation.BankName != "Chase" {
		t.Errorf("Expected bank name 'Chase', got %q", confirmation.BankName)
	}
	if confirmation.CurrencyPair != "USD/JPY" {
		t.Errorf("Expected normalized pair USD/JPY, got %q", confirmation.CurrencyPair)
	}
}

func TestParseWireConfirmationJSONMissingFields(t *testing.T) {
	confirmation, err := ParseWireConfirmationJSON(`{"bank_name": "HSBC"}`)
	if err != nil {
		t.Fatalf("Expected degraded parse to succeed, got %v", err)
	}
	if confirmation.OriginalAmount != 0 || confirmation.BankRate != 0 {
		t.Error("Expected missing numeric fields to default to zero")
	}
	if confirmation.FeeItems != nil && len(confirmation.FeeItems) != 0 {
		t.Error("Expected no fee items")
	}
}

func TestParseWireConfirmationJSONNoData(t *testing.T) {
	confirmation, err := ParseWireConfirmationJSON("The document does not contain a wire transfer.")
	if err != nil {
		t.Fatalf("Expected empty confirmation for no-data answer, got %v", err)
	}
	if confirmation.BankName != "" || confirmation.OriginalAmount != 0 {
		t.Error("Expected zero-valued confirmation")
	}
}

func TestParseWireConfirmationJSONGarbage(t *testing.T) {
	if _, err := ParseWireConfirmationJSON("certainly! here you go"); err == nil {
		t.Error("Expected error for unparseable response")
	}
}

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EUR/USD", "EUR/USD"},
		{"eur/usd", "EUR/USD"},
		{"EUR-USD", "EUR/USD"},
		{"eur_usd", "EUR/USD"},
		{"EURUSD", "EUR/USD"},
		{" gbp usd ", "GBP/USD"},
		{"", ""},
		{"DOLLARS", "DOLLARS"},
	}

	for _, tt := range tests {
		if got := NormalizePair(tt.in); got != tt.want {
			t.Errorf("NormalizePair(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
