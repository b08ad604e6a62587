// Package labels builds printable price/title label data for processed
// images. Rendering to pixels happens elsewhere; this is the structured
// text contract.
package labels

import (
	"regexp"
	"strings"

	"flyer-service/internal/ingest"
	"flyer-service/internal/utils"
)

// Item is one successfully ingested image handed over for export.
type Item struct {
	ID     string
	Result *ingest.Result
}

type TitleParts struct {
	En           string `json:"en"`
	Zh           string `json:"zh"`
	Size         string `json:"size"`
	RegularPrice string `json:"regularPrice"`
}

type PriceParts struct {
	Display  string `json:"display"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit"`
	Regular  string `json:"regular"`
}

// Label is one per-item flyer label.
type Label struct {
	ID    string     `json:"id"`
	Title TitleParts `json:"title"`
	Price PriceParts `json:"price"`
}

var reMultiBuyDisplay = regexp.MustCompile(`^(\d+)\s+FOR\s+\$`)

// Build produces exactly one label per valid item, in input order, so
// labels[i] stays aligned with placement i.
func Build(items []Item) []Label {
	out := make([]Label, 0, len(items))
	for _, it := range items {
		if it.ID == "" || it.Result == nil {
			continue
		}

		title := pickTitle(it.Result)
		after, before, unit := pickPriceParts(it.Result)

		quantity := ""
		if m := reMultiBuyDisplay.FindStringSubmatch(after); m != nil {
			quantity = m[1]
		}
		// single price with no unit defaults to /ea
		if after != "" && unit == "" && quantity == "" {
			unit = "ea"
		}

		out = append(out, Label{
			ID: it.ID,
			Title: TitleParts{
				En:           title.En,
				Zh:           title.Zh,
				Size:         pickSize(it.Result),
				RegularPrice: pickRegularPrice(it.Result),
			},
			Price: PriceParts{
				Display:  after,
				Quantity: quantity,
				Unit:     unit,
				Regular:  before,
			},
		})
	}
	return out
}

// pickTitle prefers the attached discount row, then the ingestion title,
// then a Chinese-only fallback.
func pickTitle(r *ingest.Result) ingest.Title {
	if d := r.Discount; d != nil && strings.TrimSpace(d.EnglishTitle) != "" {
		return ingest.Title{En: strings.TrimSpace(d.EnglishTitle), Zh: strings.TrimSpace(d.ChineseTitle)}
	}
	if strings.TrimSpace(r.Title.En) != "" {
		return ingest.Title{En: strings.TrimSpace(r.Title.En), Zh: strings.TrimSpace(r.Title.Zh)}
	}
	zh := ""
	if r.Discount != nil {
		zh = strings.TrimSpace(r.Discount.ChineseTitle)
	}
	if zh == "" {
		zh = strings.TrimSpace(r.Title.Zh)
	}
	return ingest.Title{Zh: zh}
}

// pickPriceParts prefers the composed discount display, falling back to
// the raw extraction attached at ingestion time.
func pickPriceParts(r *ingest.Result) (after, before, unit string) {
	if d := r.Discount; d != nil && strings.TrimSpace(d.PriceDisplay) != "" {
		return strings.TrimSpace(d.PriceDisplay), strings.TrimSpace(d.RegularPrice), strings.TrimSpace(d.Unit)
	}

	if len(r.Items) > 0 {
		it := r.Items[0]
		price := utils.PriceDigits(it.SalePrice)
		if price != "" {
			after = "$" + price
			if qty, ok := utils.ParseNumber(string(it.Quantity)); ok && qty > 1 {
				after = utils.FormatNumber(qty) + " FOR $" + price
			}
			if rp := utils.PriceDigits(it.RegularPrice); rp != "" {
				before = "$" + rp
			}
			unit = strings.ToLower(strings.TrimSpace(it.Unit))
			return after, before, unit
		}
	}
	return "", "", ""
}

func pickSize(r *ingest.Result) string {
	if r.Discount != nil && strings.TrimSpace(r.Discount.Size) != "" {
		return strings.TrimSpace(r.Discount.Size)
	}
	if len(r.Items) > 0 {
		return strings.TrimSpace(r.Items[0].Size)
	}
	return ""
}

func pickRegularPrice(r *ingest.Result) string {
	if r.Discount != nil {
		return strings.TrimSpace(r.Discount.RegularPrice)
	}
	return ""
}
