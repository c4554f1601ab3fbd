package cards

import "sort"

// Enrich recomputes the count columns of every row, drops incomplete rows and
// returns the survivors ordered by date. Running it twice changes nothing.
func Enrich(rows []*MatchRow) []*MatchRow {
	kept := make([]*MatchRow, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		countCautions(row)
		if !row.Complete() {
			continue
		}
		kept = append(kept, row)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date < kept[j].Date
	})
	return kept
}

func countCautions(row *MatchRow) {
	c := row.Cautions
	if c == nil {
		row.HomeFirstCount, row.HomeSecondCount = 0, 0
		row.OpponentFirstCount, row.OpponentSecondCount = 0, 0
	} else {
		row.HomeFirstCount = len(c.HomeFirst)
		row.HomeSecondCount = len(c.HomeSecond)
		row.OpponentFirstCount = len(c.OpponentFirst)
		row.OpponentSecondCount = len(c.OpponentSecond)
	}
	row.Total = row.HomeFirstCount + row.HomeSecondCount + row.OpponentFirstCount + row.OpponentSecondCount
	row.FirstHalfTotal = row.HomeFirstCount + row.OpponentFirstCount
	row.SecondHalfTotal = row.HomeSecondCount + row.OpponentSecondCount
}
