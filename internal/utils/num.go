package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNum = regexp.MustCompile(`[^\d.\-]`)

// ParseNumber parses loosely formatted numerics ("$4.99", "1 234,50",
// "924", NBSP-padded cells and the like). Returns ok=false for anything
// without a usable number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	repl := strings.NewReplacer("\u00a0", "", "\u2009", "", "\u202f", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(s)
	s = rxKeepNum.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

var rxPriceNum = regexp.MustCompile(`\d+(?:\.\d+)?`)

// PriceDigits extracts the first numeric+decimal run from a raw price
// string ("$4.99/lb" → "4.99"). Empty when no digits are present.
func PriceDigits(s string) string {
	return rxPriceNum.FindString(s)
}

// FormatNumber renders a float without a trailing fractional part when it
// is integral ("924", "1.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
