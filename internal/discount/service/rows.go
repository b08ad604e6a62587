package service

import (
	"fmt"
	"regexp"
	"strings"

	"flyer-service/internal/discount/model"
	"flyer-service/internal/utils"
)

// Upstream extraction regularly reads a printed weight ("924") as a
// multi-buy count. Values in this range are treated as grams, not counts.
// Tunable heuristic, not a domain law.
const (
	weightRangeMin = 50
	weightRangeMax = 9999
)

var reQtyFor = regexp.MustCompile(`^(\d+)\s*for$`)

func isGramUnit(u string) bool {
	switch u {
	case "g", "gram", "grams":
		return true
	}
	return false
}

func inWeightRange(n float64) bool {
	return n >= weightRangeMin && n <= weightRangeMax
}

// foldWeightIntoSize appends "<n>g" to the size field, space-separated
// when the size already has content.
func foldWeightIntoSize(size string, n float64) string {
	grams := utils.FormatNumber(n) + "g"
	if strings.TrimSpace(size) == "" {
		return grams
	}
	return strings.TrimSpace(size) + " " + grams
}

// NormalizeRow resolves the weight-vs-quantity ambiguity in an extracted
// discount row and composes its display price. Unparsable numeric fields
// are treated as absent; this never fails.
func NormalizeRow(r model.Row) model.Row {
	unit := strings.ToLower(strings.TrimSpace(r.Unit))
	qty, qtyOK := utils.ParseNumber(r.Quantity)

	switch {
	case isGramUnit(unit) && qtyOK && qty > 0:
		r.Size = foldWeightIntoSize(r.Size, qty)
		r.Quantity = ""
		r.Unit = ""
	case qtyOK && inWeightRange(qty):
		r.Size = foldWeightIntoSize(r.Size, qty)
		r.Quantity = ""
		r.Unit = ""
	default:
		collapsed := strings.Join(strings.Fields(unit), " ")
		if m := reQtyFor.FindStringSubmatch(collapsed); m != nil {
			if n, ok := utils.ParseNumber(m[1]); ok && inWeightRange(n) {
				r.Quantity = ""
				r.Unit = ""
			} else {
				r.Quantity = m[1]
				r.Unit = "pcs"
			}
		} else if collapsed == "for" && qtyOK && qty > 0 {
			r.Unit = "pcs"
		} else {
			r.Unit = unit
		}
	}

	r.PriceDisplay = BuildPriceDisplay(r.Quantity, r.SalePrice, r.Unit)
	return r
}

// BuildPriceDisplay composes the human-readable price string:
// "2 FOR $4.99", "$19.99/lb", "$7.99", or "" when no price is present.
// For multi-buy sale prices ("2/4.99") the price is the last slash
// segment, so "2/4.99" yields 4.99, not 24.99.
func BuildPriceDisplay(quantity, salePrice, unit string) string {
	raw := salePrice
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[len(parts)-1]
	}
	price := utils.PriceDigits(raw)

	qty := strings.TrimSpace(quantity)
	switch {
	case qty != "" && price != "":
		return fmt.Sprintf("%s FOR $%s", qty, price)
	case price != "":
		if u := strings.TrimSpace(unit); u != "" {
			return "$" + price + "/" + u
		}
		return "$" + price
	default:
		return ""
	}
}

// AssignRowIDs gives stable ids to rows lacking one, 1-based.
func AssignRowIDs(rows []model.Row) []model.Row {
	out := make([]model.Row, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			r.ID = fmt.Sprintf("row_%d", i+1)
		}
		out[i] = r
	}
	return out
}
