package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGridCSV(t *testing.T) {
	in := "1,Kikkoman Soy Sauce,龟甲万酱油,500ml,4.99,6.99\n,,,,,\n2,Oyster Sauce,蚝油,510ml,2/7.00,\n"
	rows, err := ReadGrid(strings.NewReader(in), "listing.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2) // fully empty row dropped

	assert.Equal(t, "Kikkoman Soy Sauce", rows[0][1])
	assert.Equal(t, "龟甲万酱油", rows[0][2])
	assert.Equal(t, "2/7.00", rows[1][4])
}

func TestReadGridUnsupportedExtension(t *testing.T) {
	_, err := ReadGrid(strings.NewReader("x"), "listing.pdf")
	assert.Error(t, err)
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "4.99", normalizeCell(" 4.99 "))
	assert.Equal(t, "", normalizeCell("\t \n"))
}
