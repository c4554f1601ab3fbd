package cards

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func f1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + " %"
}

// PrintStats writes the summaries and the "less than" chances of a StatsResult
func PrintStats(w io.Writer, res *StatsResult) {
	fmt.Fprintln(w, "Yellow cards (all referees)")
	table := newTable(w)
	table.Header("TEAM", "MATCHES", "MEAN_1ST", "MEAN_2ND", "SUM_1ST", "SUM_2ND")
	for _, t := range res.Teams {
		s := t.Overall
		table.Append(t.Team, strconv.Itoa(s.Matches), f1(s.MeanFirst), f1(s.MeanSecond), strconv.Itoa(s.SumFirst), strconv.Itoa(s.SumSecond))
	}
	table.Render()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Yellow cards (referee %s)\n", res.Referee)
	var absent []string
	table = newTable(w)
	table.Header("TEAM", "MATCHES", "MEAN_1ST", "MEAN_2ND", "SUM_1ST", "SUM_2ND")
	for _, t := range res.Teams {
		slice := t.UnderReferee
		if !slice.Found {
			absent = append(absent, slice.Absence())
			continue
		}
		s := slice.Summary
		table.Append(t.Team, strconv.Itoa(s.Matches), f1(s.MeanFirst), f1(s.MeanSecond), strconv.Itoa(s.SumFirst), strconv.Itoa(s.SumSecond))
	}
	table.Render()
	for _, msg := range absent {
		fmt.Fprintln(w, msg)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chances of getting less than the specified number of cards in the whole game")
	printChances(w, res.CombinedDistribution)
	for _, t := range res.Teams {
		fmt.Fprintf(w, "Chances of getting less than the specified number of cards for team: %s\n", t.Team)
		printChances(w, t.Distribution)
	}
}

func printChances(w io.Writer, d CumulativeDistribution) {
	if len(d) == 0 {
		fmt.Fprintln(w, "(no matches)")
		return
	}
	table := newTable(w)
	table.Header("LESS THAN", "CHANCE")
	for _, p := range d {
		table.Append(f1(p.Value+0.5), pct(p.Mass))
	}
	table.Render()
}

// PrintFrequencies writes the pdf/cdf table of a sample
func PrintFrequencies(w io.Writer, title string, sample []float64) {
	fmt.Fprintln(w, title)
	rows := Frequencies(sample)
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no matches)")
		return
	}
	table := newTable(w)
	table.Header("VALUE", "FREQUENCY", "PDF", "CDF")
	for _, r := range rows {
		table.Append(strconv.FormatFloat(r.Value, 'f', -1, 64), strconv.Itoa(r.Frequency),
			strconv.FormatFloat(r.PDF, 'f', 3, 64), strconv.FormatFloat(r.CDF, 'f', 3, 64))
	}
	table.Render()
}

// PrintMergeResults writes one line per team of a refresh run
func PrintMergeResults(w io.Writer, results []*MergeResult) {
	table := newTable(w)
	columns := []any{"TEAM", "NEW", "RECONSTRUCTED", "KEPT", "SAVED"}
	for _, k := range FailureKinds {
		columns = append(columns, string(k))
	}
	table.Header(columns...)
	for _, r := range results {
		byKind := r.FailuresByKind()
		row := []any{r.Team, strconv.Itoa(r.New), strconv.Itoa(r.Reconstructed), strconv.Itoa(r.Kept), strconv.FormatBool(r.Saved)}
		for _, k := range FailureKinds {
			row = append(row, strconv.Itoa(byKind[k]))
		}
		table.Append(row...)
	}
	table.Render()
}
