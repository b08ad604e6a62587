package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-service/internal/discount/model"
)

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard(nil, nil))
	assert.Equal(t, 0.0, jaccard([]string{"a"}, nil))
	assert.Equal(t, 0.0, jaccard(nil, []string{"a"}))
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"b", "a"}))
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
	// duplicates collapse into sets
	assert.Equal(t, 1.0, jaccard([]string{"a", "a"}, []string{"a"}))
}

func TestScoreMatchesSimilarProducts(t *testing.T) {
	slot := model.Slot{OCRTexts: []string{"KIKKOMAN SOY SAUCE 500ML"}}
	good := model.Row{EnglishTitle: "Kikkoman Soy Sauce", Size: "500ml"}
	bad := model.Row{EnglishTitle: "Lee Kum Kee Oyster Sauce", Size: "510ml"}

	assert.Greater(t, Score(slot, good), Score(slot, bad))
	assert.GreaterOrEqual(t, Score(slot, good), model.DefaultThreshold)
}

func TestSizeCompatible(t *testing.T) {
	assert.True(t, SizeCompatible("500ml", "500 ML"))
	assert.True(t, SizeCompatible("", "500ml"))
	assert.True(t, SizeCompatible("banana", "500ml")) // unparsed side is permissive
	assert.False(t, SizeCompatible("500ml", "510ml"))
}

func TestMatchEndToEnd(t *testing.T) {
	slots := []model.Slot{{ID: "img1", OCRTexts: []string{"KIKKOMAN SOY SAUCE 500ML"}}}
	rows := []model.Row{
		{EnglishTitle: "Kikkoman Soy Sauce", Size: "500ml"},
		{EnglishTitle: "Lee Kum Kee Oyster Sauce", Size: "510ml"},
	}

	res := Match(slots, rows, model.Options{})
	require.Len(t, res.Assignments, 1)

	a := res.Assignments[0]
	require.NotNil(t, a.Discount)
	assert.Equal(t, "row_1", a.Discount.ID)
	assert.Equal(t, "Kikkoman Soy Sauce", a.Discount.EnglishTitle)
	assert.Equal(t, model.ConfidenceHigh, a.Confidence)

	require.Len(t, res.UnmatchedRows, 1)
	assert.Equal(t, "row_2", res.UnmatchedRows[0].ID)
}

func TestMatchExclusivity(t *testing.T) {
	slots := make([]model.Slot, 5)
	for i := range slots {
		slots[i] = model.Slot{ID: fmt.Sprintf("s%d", i), OCRTexts: []string{"pork belly sliced"}}
	}
	rows := []model.Row{
		{EnglishTitle: "Pork Belly"},
		{EnglishTitle: "Pork Belly Sliced"},
		{EnglishTitle: "Chicken Wings"},
	}

	res := Match(slots, rows, model.Options{})
	seen := map[string]bool{}
	for _, a := range res.Assignments {
		if a.Discount == nil {
			continue
		}
		assert.False(t, seen[a.Discount.ID], "row %s assigned twice", a.Discount.ID)
		seen[a.Discount.ID] = true
	}
}

func TestMatchEmptyRows(t *testing.T) {
	slots := []model.Slot{{ID: "a"}, {ID: "b", OCRTexts: []string{"milk"}}}

	res := Match(slots, nil, model.Options{})
	require.Len(t, res.Assignments, 2)
	for _, a := range res.Assignments {
		assert.Nil(t, a.Discount)
		assert.Zero(t, a.Score)
		assert.Equal(t, model.ConfidenceNone, a.Confidence)
	}
	assert.Empty(t, res.UnmatchedRows)
}

// Earlier slots claim contested rows; this order sensitivity is part of
// the contract.
func TestMatchOrderSensitive(t *testing.T) {
	slots := []model.Slot{
		{ID: "first", OCRTexts: []string{"green tea 500ml"}},
		{ID: "second", OCRTexts: []string{"green tea 500ml"}},
	}
	rows := []model.Row{
		{EnglishTitle: "Green Tea", Size: "500ml"},
		{EnglishTitle: "Jasmine Tea", Size: "500ml"},
	}

	res := Match(slots, rows, model.Options{})
	require.NotNil(t, res.Assignments[0].Discount)
	require.NotNil(t, res.Assignments[1].Discount)
	assert.Equal(t, "row_1", res.Assignments[0].Discount.ID)
	assert.Equal(t, "row_2", res.Assignments[1].Discount.ID)
}

func TestMatchThresholdSplitsConfidence(t *testing.T) {
	slots := []model.Slot{{ID: "x", OCRTexts: []string{"totally unrelated text"}}}
	rows := []model.Row{{EnglishTitle: "Kikkoman Soy Sauce", Size: "500ml"}}

	res := Match(slots, rows, model.Options{})
	a := res.Assignments[0]
	// best row is still attached, but below threshold it is low confidence
	require.NotNil(t, a.Discount)
	assert.Equal(t, model.ConfidenceLow, a.Confidence)
	assert.Less(t, a.Score, model.DefaultThreshold)
}
