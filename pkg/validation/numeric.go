package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumericInput reads the leading number of a form value and raises it to
// at least min. Trailing text is ignored, so "12km" reads as 12. The second
// result is false when the value is empty or does not start with a number.
func ParseNumericInput(value string, min float64) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}

	prefix := numericPrefix.FindString(trimmed)
	if prefix == "" {
		return 0, false
	}
	number, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(number, 0) {
		return 0, false
	}

	return math.Max(min, number), true
}
