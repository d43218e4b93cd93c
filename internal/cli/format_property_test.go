package cli

import (
	"bytes"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"portfolio-dashboard/internal/tableview"
)

// For any finite amount, FormatIndianCurrency should:
// 1. Start with ₹ (or -₹ when the rounded amount is negative)
// 2. Have exactly 2 decimal places
// 3. Use Indian numbering (groups of 2 after the first 3 digits from right)
// 4. Preserve the numeric value when parsed back
func TestProperty_IndianCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatIndianCurrency produces valid Indian format", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatIndianCurrency(amount)

			// Amounts that round to zero never carry a sign.
			if math.Round(amount*100) < 0 {
				if !strings.HasPrefix(formatted, "-₹") {
					t.Logf("Expected -₹ prefix for %f, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "₹") {
				t.Logf("Expected ₹ prefix for %f, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}

			numPart := strings.TrimPrefix(formatted, "-")
			numPart = strings.TrimPrefix(numPart, "₹")
			numPart = strings.Split(numPart, ".")[0]

			indianPattern := regexp.MustCompile(`^(\d{1,2},)*\d{1,3}$`)
			if !indianPattern.MatchString(numPart) {
				t.Logf("Invalid Indian format for %f: %s (numPart: %s)", amount, formatted, numPart)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatIndianCurrency preserves value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatIndianCurrency(amount)
			parsed := parseIndianCurrency(formatted)

			roundedAmount := math.Round(amount*100) / 100
			if math.Abs(parsed-roundedAmount) > 0.01 {
				t.Logf("Value not preserved: original=%f, formatted=%s, parsed=%f", amount, formatted, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatIndianCurrency handles small amounts", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatIndianCurrency(amount)
			if !strings.HasPrefix(formatted, "₹") {
				return false
			}
			parts := strings.Split(formatted, ".")
			return len(parts) == 2 && len(parts[1]) == 2
		},
		gen.Float64Range(0, 999.99),
	))

	properties.Property("FormatPercent produces correct format", prop.ForAll(
		func(value float64) bool {
			formatted := FormatPercent(value)
			if !strings.HasSuffix(formatted, "%") {
				t.Logf("Expected %% suffix for %f, got %s", value, formatted)
				return false
			}
			if value >= 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for non-negative %f, got %s", value, formatted)
				return false
			}
			if value < 0 && !strings.HasPrefix(formatted, "-") {
				t.Logf("Expected - prefix for negative %f, got %s", value, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-100, 100),
	))

	properties.Property("FormatCompact uses correct units", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatCompact(amount)
			absAmount := math.Abs(amount)

			if absAmount >= 10000000 {
				if !strings.Contains(formatted, "Cr") {
					t.Logf("Expected Cr for %f, got %s", amount, formatted)
					return false
				}
			} else if absAmount >= 100000 {
				if !strings.Contains(formatted, "L") {
					t.Logf("Expected L for %f, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "₹") && !strings.HasPrefix(formatted, "-₹") {
				t.Logf("Expected ₹ for %f, got %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e10, 1e10),
	))

	properties.Property("FormatUSD rounds to cents", prop.ForAll(
		func(cents int64) bool {
			formatted := FormatUSD(float64(cents) / 100)
			parsed := parseUSD(formatted)
			if math.Round(parsed*100) != float64(cents) {
				t.Logf("FormatUSD(%d cents) = %s", cents, formatted)
				return false
			}
			return true
		},
		gen.Int64Range(-1e11, 1e11),
	))

	properties.TestingRun(t)
}

// parseIndianCurrency parses an Indian currency formatted string back to float64
func parseIndianCurrency(s string) float64 {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "₹")
	return parseGrouped(s, negative)
}

func parseUSD(s string) float64 {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	return parseGrouped(s, negative)
}

func parseGrouped(s string, negative bool) float64 {
	s = strings.ReplaceAll(s, ",", "")

	var parsed float64
	for i, c := range s {
		if c == '.' {
			decPart := s[i+1:]
			for j, d := range decPart {
				if d >= '0' && d <= '9' {
					parsed += float64(d-'0') / math.Pow(10, float64(j+1))
				}
			}
			break
		}
		if c >= '0' && c <= '9' {
			parsed = parsed*10 + float64(c-'0')
		}
	}

	if negative {
		parsed = -parsed
	}
	return parsed
}

// TestIndianNumberFormatExamples tests specific examples of Indian number formatting
func TestIndianNumberFormatExamples(t *testing.T) {
	testCases := []struct {
		amount   float64
		expected string
	}{
		{0, "₹0.00"},
		{1, "₹1.00"},
		{10, "₹10.00"},
		{100, "₹100.00"},
		{1000, "₹1,000.00"},
		{10000, "₹10,000.00"},
		{100000, "₹1,00,000.00"},      // 1 lakh
		{1000000, "₹10,00,000.00"},    // 10 lakhs
		{10000000, "₹1,00,00,000.00"}, // 1 crore
		{-1234.56, "-₹1,234.56"},
		{-0.001, "₹0.00"},
		{12345678.90, "₹1,23,45,678.90"},
		{math.NaN(), Placeholder},
		{math.Inf(1), Placeholder},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatIndianCurrency(tc.amount)
			if result != tc.expected {
				t.Errorf("FormatIndianCurrency(%f) = %s, want %s", tc.amount, result, tc.expected)
			}
		})
	}
}

// TestFormatPercentExamples tests specific examples of percentage formatting
func TestFormatPercentExamples(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "+0.00%"},
		{1.5, "+1.50%"},
		{-2.5, "-2.50%"},
		{100, "+100.00%"},
		{-100, "-100.00%"},
		{math.NaN(), Placeholder},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatPercent(tc.value)
			if result != tc.expected {
				t.Errorf("FormatPercent(%f) = %s, want %s", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFormatAmountCurrencies(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatAmount(1234.56, "USD"))
	assert.Equal(t, "-$0.10", FormatAmount(-0.1, "USD"))
	assert.Equal(t, "₹1,234.56", FormatAmount(1234.56, "INR"))
	assert.Equal(t, "+₹0.00", FormatPnL(0))
	assert.Equal(t, "-₹50.00", FormatPnL(-50))
}

func TestFormatUnitsAndDays(t *testing.T) {
	assert.Equal(t, "1,25,000", FormatUnits(125000))
	assert.Equal(t, "12.500", FormatUnits(12.5))
	assert.Equal(t, "Matured", FormatDaysLeft(0))
	assert.Equal(t, "Matured", FormatDaysLeft(-3))
	assert.Equal(t, "45d", FormatDaysLeft(45))
	assert.Equal(t, "abcd...", TruncateString("abcdefghij", 7))
	assert.Equal(t, "₹₹₹", TruncateString("₹₹₹", 3))
}

func TestFormatCell(t *testing.T) {
	o := newOutput(&bytes.Buffer{}, false, false)

	cases := []struct {
		name     string
		kind     tableview.Kind
		value    any
		present  bool
		currency string
		live     bool
		want     string
	}{
		{"missing", tableview.KindAmount, nil, false, "INR", true, Placeholder},
		{"amount inr", tableview.KindAmount, 150000.0, true, "INR", true, "₹1,50,000.00"},
		{"amount usd", tableview.KindAmount, 1500.0, true, "USD", true, "$1,500.00"},
		{"always inr", tableview.KindAmountINR, 85000.0, true, "USD", true, "₹85,000.00"},
		{"percent", tableview.KindPercent, 12.346, true, "INR", true, "+12.35%"},
		{"rate", tableview.KindRate, 7.1, true, "INR", true, "7.1%"},
		{"whole units", tableview.KindUnits, 10, true, "INR", true, "10"},
		{"matured", tableview.KindDays, 0, true, "INR", true, "Matured"},
		{"live price", tableview.KindLivePrice, 101.5, true, "INR", true, "₹101.50 ●"},
		{"cached price", tableview.KindLivePrice, 101.5, true, "INR", false, "₹101.50 cached"},
		{"usd loss", tableview.KindGainLoss, -25.0, true, "USD", true, "-$25.00"},
		{"inr gain", tableview.KindGainLoss, 25.0, true, "INR", true, "+₹25.00"},
		{"actions", tableview.KindActions, 3, true, "INR", true, "#3"},
		{"text", tableview.KindText, "SBI", true, "INR", true, "SBI"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			col := tableview.Column{Key: "k", Label: "K", Kind: tc.kind}
			cell := tableview.Cell{Key: "k", Value: tc.value, Present: tc.present}
			assert.Equal(t, tc.want, o.FormatCell(col, cell, tc.currency, tc.live))
		})
	}
}
