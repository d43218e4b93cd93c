package models

import (
	"encoding/json"
	"testing"

	apperrors "portfolio-dashboard/internal/errors"
)

func TestDetectAssetClassOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want AssetClass
		ok   bool
	}{
		{"mutual fund", map[string]any{"name": "HDFC Flexi Cap Fund", "schemeCode": "100179"}, ClassMutualFund, true},
		{"scheme code wins over symbol", map[string]any{"schemeCode": "1", "symbol": "X", "avgPrice": 10.0}, ClassMutualFund, true},
		{"stock", map[string]any{"symbol": "RELIANCE.NS", "avgPrice": 2450.0}, ClassStock, true},
		{"stock with zero avg price reads as gold", map[string]any{"symbol": "RELIANCE.NS", "avgPrice": 0.0}, ClassGold, true},
		{"gold", map[string]any{"symbol": "GOLDBEES.NS", "purchasePrice": 45.0}, ClassGold, true},
		{"fixed deposit", map[string]any{"bank": "SBI", "maturityDate": "2026-04-01"}, ClassFixedDeposit, true},
		{"unknown", map[string]any{"bank": "SBI"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectAssetClass(tt.raw)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DetectAssetClass() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDecodeHolding(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{"name":"Apple","symbol":"AAPL","exchange":"NASDAQ","units":5,"avgPrice":150.5,"invested":752.5}`), &raw); err != nil {
		t.Fatal(err)
	}
	h, err := DecodeHolding(raw)
	if err != nil {
		t.Fatalf("DecodeHolding: %v", err)
	}
	s, ok := h.(Stock)
	if !ok {
		t.Fatalf("expected Stock, got %T", h)
	}
	if s.Units != 5 || s.Exchange != NASDAQ || !s.Exchange.IsForeign() {
		t.Errorf("unexpected stock %+v", s)
	}
}

func TestGoldFieldsIncludeManualValueOnlyWhenSet(t *testing.T) {
	g := Gold{Name: "SGB 2027", Type: GoldSGB, Units: 8, PurchasePrice: 4500, Invested: 36000}
	if _, ok := g.Field("manualCurrentValue"); ok {
		t.Errorf("manualCurrentValue should be absent")
	}

	v := 52000.0
	g.ManualCurrentValue = &v
	got, ok := g.Field("manualCurrentValue")
	if !ok || got.(float64) != 52000 {
		t.Errorf("Field(manualCurrentValue) = %v, %v", got, ok)
	}
}

func TestCloneIsDeep(t *testing.T) {
	v := 100.0
	p := &Portfolio{
		MutualFunds: []MutualFund{{Name: "A", Units: 1}},
		Gold:        []Gold{{Name: "G", ManualCurrentValue: &v}},
	}
	c := p.Clone()
	c.MutualFunds[0].Name = "B"
	*c.Gold[0].ManualCurrentValue = 200

	if p.MutualFunds[0].Name != "A" {
		t.Errorf("clone shares mutual fund backing array")
	}
	if *p.Gold[0].ManualCurrentValue != 100 {
		t.Errorf("clone shares manual value pointer")
	}
}

func TestHoldingsPreservesIndex(t *testing.T) {
	p := &Portfolio{Stocks: []Stock{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}}
	hs := p.Holdings(ClassStock)
	if len(hs) != 3 || hs[2].LookupKey() != "C" {
		t.Fatalf("Holdings() = %+v", hs)
	}
	if p.Len(ClassStock) != 3 || p.Len(ClassGold) != 0 {
		t.Errorf("Len mismatch")
	}
	if len(p.All()) != 3 {
		t.Errorf("All() = %d holdings, want 3", len(p.All()))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{22615.0, "22615"},
		{45.23, "45.23"},
		{10, "10"},
		{"HDFC", "HDFC"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFixedDepositValidate(t *testing.T) {
	fd := FixedDeposit{Bank: "SBI", Invested: 100000, Rate: 7.1, StartDate: "2025-04-01", MaturityDate: "2026-04-01", Status: FDActive}
	if err := fd.Validate(); err != nil {
		t.Fatalf("valid fd rejected: %v", err)
	}

	bad := fd
	bad.MaturityDate = "2025-01-01"
	err := bad.Validate()
	if !apperrors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	bad = fd
	bad.Invested = 0
	if err := ValidateHolding(bad); err == nil {
		t.Errorf("zero invested should be rejected")
	}
}
