package service

import (
	"regexp"
	"strings"
)

// Zero-width / BOM characters that OCR and copy-paste drag in.
var zeroWidth = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")

// Smart-quote variants collapsed away before comparison.
var smartQuotes = strings.NewReplacer("’", "", "'", "", `"`, "", "“", "", "”", "")

// Runs of anything outside latin/digits/CJK become a single space.
var nonWord = regexp.MustCompile(`[^a-z0-9\x{4e00}-\x{9fff}]+`)

// CJK-only view: keep ideographs plus latin letters and digits, no spaces.
var nonCJKWord = regexp.MustCompile(`[^\x{4e00}-\x{9fff}0-9a-zA-Z]+`)

// NormalizeGeneric lowers, strips zero-width and quote noise and collapses
// everything outside [a-z0-9 CJK] into single spaces.
func NormalizeGeneric(s string) string {
	if s == "" {
		return ""
	}
	out := strings.ToLower(s)
	out = zeroWidth.Replace(out)
	out = smartQuotes.Replace(out)
	out = nonWord.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// NormalizeCJK keeps only CJK ideographs, latin letters and digits,
// with no spaces retained.
func NormalizeCJK(s string) string {
	if s == "" {
		return ""
	}
	out := zeroWidth.Replace(s)
	out = nonCJKWord.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Size grammars, matched against the generic-normalized string in priority
// order. Units are canonicalized to lower case.
var (
	reSizeCountFirst = regexp.MustCompile(`^(\d+)\s*[x*]\s*(\d+(?:\.\d+)?)\s*(g|kg|ml|l|lb|oz)$`)
	reSizeCountLast  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(g|kg|ml|l|lb|oz)\s*[*x]\s*(\d+)$`)
	reSizeRange      = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(g|kg|ml|l|lb|oz)\s*-\s*(\d+(?:\.\d+)?)\s*(g|kg|ml|l|lb|oz)$`)
	reSizeSingle     = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(g|kg|ml|l|lb|oz)$`)

	// like the generic cleaner, but size grammars need ".", "-" and "*"
	// to survive
	sizeNoise = regexp.MustCompile(`[^a-z0-9.*\-]+`)
)

// NormalizeSize canonicalizes a size descriptor: "2 x 500ml", "2*500ml"
// and "500ml x 2" all become "2x500ml", "250g - 300g" becomes
// "250g-300g", "1 KG" becomes "1kg". Anything else yields "".
func NormalizeSize(s string) string {
	t := strings.ToLower(zeroWidth.Replace(s))
	t = sizeNoise.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if m := reSizeCountFirst.FindStringSubmatch(t); m != nil {
		return m[1] + "x" + m[2] + m[3]
	}
	if m := reSizeCountLast.FindStringSubmatch(t); m != nil {
		return m[3] + "x" + m[1] + m[2]
	}
	if m := reSizeRange.FindStringSubmatch(t); m != nil && m[2] == m[4] {
		return m[1] + m[2] + "-" + m[3] + m[2]
	}
	if m := reSizeSingle.FindStringSubmatch(t); m != nil {
		return m[1] + m[2]
	}
	return ""
}

// Tokens splits the generic-normalized string into non-empty tokens.
func Tokens(s string) []string {
	t := NormalizeGeneric(s)
	if t == "" {
		return nil
	}
	return strings.Fields(t)
}

// CharBigrams emits overlapping 2-rune windows over the generic-normalized
// string with spaces removed. A single-rune string is its own sole bigram.
func CharBigrams(s string) []string {
	t := strings.ReplaceAll(NormalizeGeneric(s), " ", "")
	r := []rune(t)
	if len(r) == 0 {
		return nil
	}
	if len(r) == 1 {
		return []string{string(r)}
	}
	out := make([]string, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out = append(out, string(r[i:i+2]))
	}
	return out
}
