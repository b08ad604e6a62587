package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadGrid picks a parser by extension and returns the sheet as a plain
// grid of trimmed cell strings. Discount listings use fixed column
// positions, so no header mapping happens here.
func ReadGrid(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// normalizeCell trims ordinary and non-breaking whitespace around a cell.
func normalizeCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '\u00a0', '\u202f':
			return true
		}
		return false
	})
}

// dropEmptyRows removes rows whose every cell is blank.
func dropEmptyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		empty := true
		for _, c := range row {
			if c != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}
