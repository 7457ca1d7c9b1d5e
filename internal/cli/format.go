// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
)

// currencySymbol prefixes every formatted amount.
var currencySymbol = "$"

// SetCurrency changes the symbol used by FormatMoney.
func SetCurrency(symbol string) {
	currencySymbol = symbol
}

// FormatMoney formats an amount with two decimals and thousands separators.
// e.g., 1234.5 -> "$1,234.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := currencySymbol + groupDigits(intPart) + "." + frac
	if d.Round(2).IsNegative() {
		return "-" + out
	}
	return out
}

// FormatDelta formats a change with an explicit sign.
func FormatDelta(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDays formats a day count, e.g. 1 -> "1 day", 3 -> "3 days".
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(wd time.Weekday) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if wd >= 0 && int(wd) < len(days) {
		return days[wd]
	}
	return "???"
}

// FormatDate renders a date with its weekday, e.g. "Mon 2024-01-01".
func FormatDate(d calendar.Date) string {
	if d.IsZero() {
		return "-"
	}
	return FormatDayOfWeek(d.Weekday()) + " " + d.Key()
}

// FormatPeriod renders an inclusive date range.
func FormatPeriod(from, to calendar.Date) string {
	return from.Key() + " → " + to.Key()
}

// ShortID truncates an identifier for table display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
