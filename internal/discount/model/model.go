package model

// PriceType classifies an after-discount price expression.
type PriceType string

const (
	PriceEmpty  PriceType = "EMPTY"
	PriceSingle PriceType = "SINGLE"
	PriceMulti  PriceType = "MULTI"
)

// PricePlan is the typed interpretation of a raw after-price string.
// MULTI carries both Qty (digits only) and Price (always with a fractional
// part); SINGLE carries just the currency-stripped price.
type PricePlan struct {
	Type  PriceType `json:"type"`
	Qty   string    `json:"qty,omitempty"`
	Price string    `json:"price"`
}

// Row is one parsed discount line item. Titles and size stay raw;
// PriceDisplay is the derived human-readable string ("2 FOR $5.00").
// Quantity is a multi-buy count; a value that is really a printed weight
// belongs in Size, never here.
type Row struct {
	ID           string `json:"id"`
	EnglishTitle string `json:"en"`
	ChineseTitle string `json:"zh"`
	Size         string `json:"size"`
	SalePrice    string `json:"salePrice"`
	RegularPrice string `json:"regularPrice,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	PriceDisplay string `json:"priceDisplay"`
}

// Confidence is the coarse label derived from thresholding a match score.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
	ConfidenceNone Confidence = "none"
)

// Slot is one ingested product image's text evidence awaiting a discount.
type Slot struct {
	ID       string   `json:"id"`
	OCRTexts []string `json:"ocrTexts"`
}

// Assignment pairs a slot with at most one discount row.
type Assignment struct {
	SlotID     string     `json:"slotId"`
	Discount   *Row       `json:"discount"`
	Score      float64    `json:"matchScore"`
	Confidence Confidence `json:"matchConfidence"`
}

// MatchResult carries per-slot assignments plus the rows no slot claimed,
// so callers can surface leftover discounts.
type MatchResult struct {
	Assignments   []Assignment `json:"assignments"`
	UnmatchedRows []Row        `json:"unmatchedRows"`
}

// DefaultThreshold splits high from low match confidence.
const DefaultThreshold = 0.35

// Options tune the matcher.
type Options struct {
	Threshold float64 `json:"threshold"` // 0 means DefaultThreshold
}

func (o Options) EffectiveThreshold() float64 {
	if o.Threshold > 0 {
		return o.Threshold
	}
	return DefaultThreshold
}
