package models

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the persisted layout of fixed deposit dates.
const DateLayout = "2006-01-02"

// FieldValue is a named raw field of a holding.
type FieldValue struct {
	Key   string
	Value any
}

// Holding is one recorded position. Every implementation carries its asset
// class explicitly so callers never have to sniff fields.
type Holding interface {
	AssetClass() AssetClass
	// LookupKey is the live price cache key, empty when the holding has none.
	LookupKey() string
	InvestedAmount() float64
	// Field returns the raw value stored under the persisted key.
	Field(key string) (any, bool)
	// Fields returns every present raw field in persisted order.
	Fields() []FieldValue
}

// FixedDeposit is a bank fixed deposit.
type FixedDeposit struct {
	Bank          string   `json:"bank" csv:"bank"`
	FDNumber      string   `json:"fdNumber" csv:"fdNumber"`
	Invested      float64  `json:"invested" csv:"invested"`
	Rate          float64  `json:"rate" csv:"rate"`
	StartDate     string   `json:"startDate" csv:"startDate"`
	MaturityDate  string   `json:"maturityDate" csv:"maturityDate"`
	MaturityValue float64  `json:"maturityValue" csv:"maturityValue"`
	Status        FDStatus `json:"status" csv:"status"`
}

func (FixedDeposit) AssetClass() AssetClass     { return ClassFixedDeposit }
func (FixedDeposit) LookupKey() string          { return "" }
func (f FixedDeposit) InvestedAmount() float64 { return f.Invested }

func (f FixedDeposit) Fields() []FieldValue {
	return []FieldValue{
		{"bank", f.Bank},
		{"fdNumber", f.FDNumber},
		{"invested", f.Invested},
		{"rate", f.Rate},
		{"startDate", f.StartDate},
		{"maturityDate", f.MaturityDate},
		{"maturityValue", f.MaturityValue},
		{"status", string(f.Status)},
	}
}

func (f FixedDeposit) Field(key string) (any, bool) {
	return lookup(f.Fields(), key)
}

// Start parses StartDate.
func (f FixedDeposit) Start() (time.Time, bool) {
	return ParseDate(f.StartDate)
}

// Maturity parses MaturityDate.
func (f FixedDeposit) Maturity() (time.Time, bool) {
	return ParseDate(f.MaturityDate)
}

// MutualFund is a mutual fund holding keyed by its AMFI scheme code.
type MutualFund struct {
	Name        string  `json:"name" csv:"name"`
	SchemeCode  string  `json:"schemeCode" csv:"schemeCode"`
	Owner       Owner   `json:"owner" csv:"owner"`
	Units       float64 `json:"units" csv:"units"`
	PurchaseNAV float64 `json:"purchaseNAV" csv:"purchaseNAV"`
	Invested    float64 `json:"invested" csv:"invested"`
}

func (MutualFund) AssetClass() AssetClass     { return ClassMutualFund }
func (m MutualFund) LookupKey() string        { return m.SchemeCode }
func (m MutualFund) InvestedAmount() float64 { return m.Invested }

func (m MutualFund) Fields() []FieldValue {
	return []FieldValue{
		{"name", m.Name},
		{"schemeCode", m.SchemeCode},
		{"owner", string(m.Owner)},
		{"units", m.Units},
		{"purchaseNAV", m.PurchaseNAV},
		{"invested", m.Invested},
	}
}

func (m MutualFund) Field(key string) (any, bool) {
	return lookup(m.Fields(), key)
}

// Stock is an equity holding. Amounts are in the exchange's currency.
type Stock struct {
	Name     string   `json:"name" csv:"name"`
	Symbol   string   `json:"symbol" csv:"symbol"`
	Exchange Exchange `json:"exchange" csv:"exchange"`
	Units    int      `json:"units" csv:"units"`
	AvgPrice float64  `json:"avgPrice" csv:"avgPrice"`
	Invested float64  `json:"invested" csv:"invested"`
}

func (Stock) AssetClass() AssetClass     { return ClassStock }
func (s Stock) LookupKey() string        { return s.Symbol }
func (s Stock) InvestedAmount() float64 { return s.Invested }

func (s Stock) Fields() []FieldValue {
	return []FieldValue{
		{"name", s.Name},
		{"symbol", s.Symbol},
		{"exchange", string(s.Exchange)},
		{"units", s.Units},
		{"avgPrice", s.AvgPrice},
		{"invested", s.Invested},
	}
}

func (s Stock) Field(key string) (any, bool) {
	return lookup(s.Fields(), key)
}

// Gold is a gold instrument. ManualCurrentValue, when set, overrides the
// price based current value.
type Gold struct {
	Name               string   `json:"name" csv:"name"`
	Type               GoldType `json:"type" csv:"type"`
	Symbol             string   `json:"symbol,omitempty" csv:"symbol"`
	Units              float64  `json:"units" csv:"units"`
	PurchasePrice      float64  `json:"purchasePrice" csv:"purchasePrice"`
	Invested           float64  `json:"invested" csv:"invested"`
	ManualCurrentValue *float64 `json:"manualCurrentValue,omitempty" csv:"-"`
}

func (Gold) AssetClass() AssetClass     { return ClassGold }
func (g Gold) LookupKey() string        { return g.Symbol }
func (g Gold) InvestedAmount() float64 { return g.Invested }

func (g Gold) Fields() []FieldValue {
	fields := []FieldValue{
		{"name", g.Name},
		{"type", string(g.Type)},
		{"symbol", g.Symbol},
		{"units", g.Units},
		{"purchasePrice", g.PurchasePrice},
		{"invested", g.Invested},
	}
	if g.ManualCurrentValue != nil {
		fields = append(fields, FieldValue{"manualCurrentValue", *g.ManualCurrentValue})
	}
	return fields
}

func (g Gold) Field(key string) (any, bool) {
	return lookup(g.Fields(), key)
}

func lookup(fields []FieldValue, key string) (any, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// ParseDate parses a persisted YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatValue renders a raw field value the way search and CSV see it:
// integral floats without a fractional part, others in shortest form.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
