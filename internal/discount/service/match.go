package service

import (
	"strings"

	"flyer-service/internal/discount/model"
)

// Relative weight of token overlap vs character bigrams. Tokens carry the
// signal; bigrams absorb OCR spacing noise, notably in CJK text.
const (
	tokenWeight  = 0.75
	bigramWeight = 0.25
)

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// jaccard is intersection over union of the two slices seen as sets.
// Two empty sets count as identical.
func jaccard(a, b []string) float64 {
	sa, sb := toSet(a), toSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for x := range sa {
		if _, ok := sb[x]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

// slotKey is the generic-normalized concatenation of the slot's OCR lines.
func slotKey(s model.Slot) string {
	return NormalizeGeneric(strings.Join(s.OCRTexts, " "))
}

// rowKey concatenates the normalized english title, CJK title and size.
func rowKey(r model.Row) string {
	en := NormalizeGeneric(r.EnglishTitle)
	zh := NormalizeCJK(r.ChineseTitle)
	size := NormalizeSize(r.Size)
	return strings.TrimSpace(en + " " + zh + " " + size)
}

// Score rates how well a discount row describes a slot's OCR evidence,
// in [0,1].
func Score(slot model.Slot, row model.Row) float64 {
	sk := slotKey(slot)
	rk := rowKey(row)
	wTok := jaccard(Tokens(sk), Tokens(rk))
	wBi := jaccard(CharBigrams(sk), CharBigrams(rk))
	return tokenWeight*wTok + bigramWeight*wBi
}

// SizeCompatible reports whether two size strings can describe the same
// product: true when either fails to parse, otherwise they must normalize
// identically. Kept as a standalone predicate; it does not gate Score.
func SizeCompatible(a, b string) bool {
	na, nb := NormalizeSize(a), NormalizeSize(b)
	if na == "" || nb == "" {
		return true
	}
	return na == nb
}

// Match greedily assigns each slot to at most one discount row, in slot
// order. A row once claimed is never reassigned, and an earlier slot wins
// ties because later candidates must score strictly higher. This
// left-to-right consumption is deliberate and load-bearing: downstream
// consumers rely on deterministic order-sensitive behavior, so do not
// replace it with an optimal bipartite assignment.
func Match(slots []model.Slot, rows []model.Row, opts model.Options) model.MatchResult {
	threshold := opts.EffectiveThreshold()
	rows = AssignRowIDs(rows)

	used := make(map[string]bool, len(rows))
	assignments := make([]model.Assignment, 0, len(slots))

	for _, slot := range slots {
		if len(rows) == 0 {
			assignments = append(assignments, model.Assignment{
				SlotID:     slot.ID,
				Confidence: model.ConfidenceNone,
			})
			continue
		}

		bestIdx := -1
		bestScore := 0.0
		for i := range rows {
			if used[rows[i].ID] {
				continue
			}
			if s := Score(slot, rows[i]); bestIdx == -1 || s > bestScore {
				bestIdx = i
				bestScore = s
			}
		}

		a := model.Assignment{SlotID: slot.ID, Confidence: model.ConfidenceLow}
		if bestIdx >= 0 {
			row := rows[bestIdx]
			used[row.ID] = true
			a.Discount = &row
			a.Score = bestScore
			if bestScore >= threshold {
				a.Confidence = model.ConfidenceHigh
			}
		}
		assignments = append(assignments, a)
	}

	unmatched := make([]model.Row, 0)
	for _, r := range rows {
		if !used[r.ID] {
			unmatched = append(unmatched, r)
		}
	}

	return model.MatchResult{Assignments: assignments, UnmatchedRows: unmatched}
}
