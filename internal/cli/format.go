package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/tableview"
	"portfolio-dashboard/pkg/utils"
)

// Placeholder is shown for values that are missing or not computable.
const Placeholder = "—"

// FormatIndianCurrency formats a number in Indian currency format (lakhs, crores).
func FormatIndianCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}
	negative := amount < 0
	if negative {
		amount = -amount
	}

	// Format with 2 decimal places
	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	formatted := formatIndianNumber(intPart)

	result := "₹" + formatted + "." + decPart
	if negative && str != "0.00" {
		result = "-" + result
	}
	return result
}

// formatIndianNumber formats an integer string in Indian numbering system.
// Indian system: 1,00,00,000 (1 crore) vs Western: 10,000,000
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right (hundreds)
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2 (thousands, lakhs, crores)
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatUSD formats a US dollar amount, e.g. "$1,234.56".
func FormatUSD(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}
	return money.New(int64(math.Round(amount*100)), money.USD).Display()
}

// FormatAmount formats amount in the given ISO currency.
func FormatAmount(amount float64, currency string) string {
	if currency == "USD" {
		return FormatUSD(amount)
	}
	return FormatIndianCurrency(amount)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	sign := ""
	if value >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign. Break-even counts as a gain.
func FormatPnL(pnl float64) string {
	formatted := FormatIndianCurrency(pnl)
	if pnl >= 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatLakhs formats a number in lakhs.
func FormatLakhs(amount float64) string {
	lakhs := amount / 100000
	if lakhs < 0 {
		return fmt.Sprintf("-%.2f L", -lakhs)
	}
	return fmt.Sprintf("%.2f L", lakhs)
}

// FormatCrores formats a number in crores.
func FormatCrores(amount float64) string {
	crores := amount / 10000000
	if crores < 0 {
		return fmt.Sprintf("-%.2f Cr", -crores)
	}
	return fmt.Sprintf("%.2f Cr", crores)
}

// FormatCompact formats a number in compact form (L/Cr).
func FormatCompact(amount float64) string {
	absAmount := math.Abs(amount)

	if absAmount >= 10000000 { // 1 crore
		return FormatCrores(amount)
	} else if absAmount >= 100000 { // 1 lakh
		return FormatLakhs(amount)
	}
	return FormatIndianCurrency(amount)
}

// FormatUnits formats fractional units with three decimals and whole
// share counts without any.
func FormatUnits(v any) string {
	switch x := v.(type) {
	case int:
		return formatIndianNumber(strconv.Itoa(x))
	case float64:
		return fmt.Sprintf("%.3f", x)
	}
	return models.FormatValue(v)
}

// FormatDate formats a date in IST.
func FormatDate(t time.Time) string {
	return t.In(utils.IndiaLocation).Format("02-Jan-2006")
}

// FormatDateTime formats a datetime in IST.
func FormatDateTime(t time.Time) string {
	return t.In(utils.IndiaLocation).Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatDaysLeft renders days to maturity; matured deposits show 0.
func FormatDaysLeft(days int) string {
	if days <= 0 {
		return "Matured"
	}
	return fmt.Sprintf("%dd", days)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatCell renders one projected cell for the terminal. currency is the
// table's native currency; live tells whether the row has a live price.
func (o *Output) FormatCell(col tableview.Column, cell tableview.Cell, currency string, live bool) string {
	if !cell.Present {
		return Placeholder
	}
	num, isNum := toFloat(cell.Value)

	switch col.Kind {
	case tableview.KindAmount:
		if isNum {
			return FormatAmount(num, currency)
		}
	case tableview.KindAmountINR:
		if isNum {
			return FormatIndianCurrency(num)
		}
	case tableview.KindPercent:
		if isNum {
			return o.FormatPercent(num)
		}
	case tableview.KindRate:
		if isNum {
			return fmt.Sprintf("%.1f%%", num)
		}
	case tableview.KindUnits:
		return FormatUnits(cell.Value)
	case tableview.KindDays:
		if isNum {
			return FormatDaysLeft(int(num))
		}
	case tableview.KindLivePrice:
		if !isNum {
			break
		}
		price := FormatAmount(num, currency)
		if live {
			return o.Green(price + " ●")
		}
		return o.DimText(price + " cached")
	case tableview.KindGainLoss:
		if isNum {
			if currency == "USD" {
				s := FormatUSD(num)
				if num >= 0 {
					s = "+" + s
				}
				return o.gainColor(num).Sprint(s)
			}
			return o.FormatPnL(num)
		}
	case tableview.KindActions:
		return o.DimText("#" + models.FormatValue(cell.Value))
	}
	return models.FormatValue(cell.Value)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
