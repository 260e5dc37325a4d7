// Package format renders amounts and labels for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/carcost/pkg/constants"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(amount)
	if strings.HasPrefix(formatted, "-") {
		return "-$" + formatted[1:]
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Percent renders a percentage value with one decimal (6.99 -> "7.0%").
func Percent(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

// FrequencyLabel returns the display name of a payment frequency.
func FrequencyLabel(frequency string) string {
	switch frequency {
	case constants.FrequencyMonthly:
		return "Monthly"
	case constants.FrequencyBiweekly:
		return "Bi-weekly"
	case constants.FrequencySemimonthly:
		return "Semi-monthly"
	case constants.FrequencyWeekly:
		return "Weekly"
	default:
		return frequency
	}
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
