package service

import (
	"regexp"
	"strings"

	"flyer-service/internal/discount/model"
)

var (
	reDigitsOnly  = regexp.MustCompile(`^\d+$`)
	reDecimal     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	reOneDecPlace = regexp.MustCompile(`^\d+\.\d$`)
)

// ClassifyPrice interprets a raw "after discount" price expression.
// "2/4.99" is a multi-buy (qty 2, price 4.99); "7.9" is a single price
// padded to "7.90"; empty input classifies as EMPTY. Never fails: anything
// that is not a clean multi-buy falls back to SINGLE.
func ClassifyPrice(raw string) model.PricePlan {
	if strings.TrimSpace(raw) == "" {
		return model.PricePlan{Type: model.PriceEmpty, Price: ""}
	}

	cleaned := strings.ReplaceAll(raw, "$", "")
	cleaned = strings.Join(strings.Fields(cleaned), "")

	if strings.Contains(cleaned, "/") {
		qty, price := "", ""
		for _, part := range strings.Split(cleaned, "/") {
			switch {
			case qty == "" && reDigitsOnly.MatchString(part):
				qty = part
			case price == "" && reDecimal.MatchString(part):
				price = padPrice(part)
			}
		}
		if qty != "" && price != "" {
			return model.PricePlan{Type: model.PriceMulti, Qty: qty, Price: price}
		}
	}

	return model.PricePlan{Type: model.PriceSingle, Price: padPrice(cleaned)}
}

// padPrice pads a single-decimal-digit price ("7.9" → "7.90"); prices with
// two decimals or none pass through untouched.
func padPrice(p string) string {
	if reOneDecPlace.MatchString(p) {
		return p + "0"
	}
	return p
}
