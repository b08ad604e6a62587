// Package parser turns free-form or spreadsheet discount listings into
// normalized discount rows, delegating text extraction to an LLM client.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"flyer-service/internal/deepseek"
	"flyer-service/internal/discount/model"
	"flyer-service/internal/discount/service"
	"flyer-service/internal/fileio"
)

// Extractor is the LLM-backed extraction call; faked in tests.
type Extractor interface {
	Extract(ctx context.Context, rawText string) ([]deepseek.Item, error)
}

type Parser struct {
	ex  Extractor
	log zerolog.Logger
}

func New(ex Extractor, logger zerolog.Logger) *Parser {
	return &Parser{ex: ex, log: logger}
}

var (
	reSimplePrice   = regexp.MustCompile(`^\d+\.\d{2}$`)
	reMultibuyPrice = regexp.MustCompile(`^\d+/\d+\.\d{2}$`)
)

func validPrice(s string) bool {
	return reSimplePrice.MatchString(s) || reMultibuyPrice.MatchString(s)
}

var reUnitFor = regexp.MustCompile(`^\d+\s*for$`)

// canonical unit spellings; anything unknown becomes "ea"
var unitMap = map[string]string{
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"ea": "ea", "each": "ea", "pc": "ea", "pcs": "ea",
	"piece": "ea", "pieces": "ea", "item": "ea", "items": "ea",
	"bag": "bag", "bags": "bag", "pkg": "bag", "pkgs": "bag",
	"package": "bag", "packages": "bag",
	"order": "order",
}

func canonicalUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if u == "" {
		return "ea"
	}
	if out, ok := unitMap[u]; ok {
		return out
	}
	// gram and "<n> for" spellings carry weight/multi-buy information
	// the row normalizer keys on; pass them through untouched
	switch u {
	case "g", "gram", "grams", "for":
		return u
	}
	if reUnitFor.MatchString(u) {
		return u
	}
	return "ea"
}

// ParseText extracts rows from a free-form listing. Rows with invalid
// prices or no title are dropped; the weight-vs-quantity heuristic and
// display-price composition run on the survivors.
func (p *Parser) ParseText(ctx context.Context, rawText string) ([]model.Row, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.New("parser: empty discount text")
	}

	items, err := p.ex.Extract(ctx, rawText)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Row, 0, len(items))
	dropped := 0
	for _, it := range items {
		en := strings.TrimSpace(it.En)
		zh := strings.TrimSpace(it.Zh)
		sale := strings.TrimSpace(it.SalePrice)
		if (en == "" && zh == "") || !validPrice(sale) {
			dropped++
			continue
		}

		row := model.Row{
			EnglishTitle: en,
			ChineseTitle: zh,
			Size:         compactSize(it.Size),
			SalePrice:    sale,
			RegularPrice: decorateRegularPrice(it.RegularPrice, sale),
			Unit:         canonicalUnit(it.Unit),
			Quantity:     string(it.Quantity),
		}
		rows = append(rows, service.NormalizeRow(row))
	}
	if dropped > 0 {
		p.log.Warn().Int("dropped", dropped).Msg("discount rows failed validation")
	}

	return service.AssignRowIDs(rows), nil
}

// ParseFile reads a spreadsheet listing (xlsx/xls/csv), rebuilds it as
// numbered line text and delegates to ParseText.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader, filename string) ([]model.Row, error) {
	grid, err := fileio.ReadGrid(r, filename)
	if err != nil {
		return nil, err
	}
	text := BuildLines(grid)
	if text == "" {
		return nil, errors.New("parser: spreadsheet contained no valid discount rows")
	}
	return p.ParseText(ctx, text)
}

// ParsePath opens a spreadsheet on disk and parses it with ParseFile.
func (p *Parser) ParsePath(ctx context.Context, path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %s: %w", path, err)
	}
	defer f.Close()
	return p.ParseFile(ctx, f, filepath.Base(path))
}

// compactSize keeps a size only when it parses under the size grammars,
// with whitespace squeezed out of the raw spelling.
func compactSize(s string) string {
	if service.NormalizeSize(s) == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), "")
}

// decorateRegularPrice renders the was-price for display; multi-buy sale
// prices get the per-unit suffix.
func decorateRegularPrice(rp, salePrice string) string {
	rp = strings.TrimSpace(rp)
	if rp == "" || !validPrice(rp) {
		return ""
	}
	if strings.Contains(salePrice, "/") {
		return "$" + rp + " /ea"
	}
	return rp
}
