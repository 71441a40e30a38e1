package strategy

import (
	"regexp"
	"strconv"
)

// First decimal number in the text, optionally dollar-prefixed, is treated as
// the mentioned price. Later mentions are ignored.
var priceRegex = regexp.MustCompile(`\$?(\d+(?:\.\d+)?)`)

// DetectPrice returns the first price-like number mentioned in input.
func DetectPrice(input string) (float64, bool) {
	m := priceRegex.FindStringSubmatch(input)
	if m == nil {
		return 0, false
	}

	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// FormatPrice renders a price the way prompts and guidance text expect,
// without a trailing ".0" for whole amounts.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
