package parser

import (
	"fmt"
	"strings"
)

// Fixed listing columns by department convention: the first column is a
// line number, then english title, chinese title, size, sale price and
// regular price.
const (
	colEnglish = 1
	colChinese = 2
	colSize    = 3
	colSale    = 4
	colRegular = 5
)

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// BuildLines rebuilds a spreadsheet grid as the numbered line-text format
// the text extractor consumes. Rows without a valid sale price are
// dropped outright.
func BuildLines(grid [][]string) string {
	var lines []string
	n := 1

	for _, row := range grid {
		name := cell(row, colEnglish)
		zh := cell(row, colChinese)
		size := cell(row, colSize)
		now := cell(row, colSale)
		was := cell(row, colRegular)

		if !validPrice(now) {
			continue
		}

		parts := make([]string, 0, 5)
		if name != "" {
			parts = append(parts, "EN:"+name)
		}
		if zh != "" {
			parts = append(parts, "ZH:"+zh)
		}
		if size != "" {
			parts = append(parts, size)
		}
		parts = append(parts, now)
		if reSimplePrice.MatchString(was) {
			parts = append(parts, "Was "+was)
		}

		lines = append(lines, fmt.Sprintf("%d、 %s", n, strings.Join(parts, " ")))
		n++
	}

	return strings.Join(lines, "\n")
}
