package cards

import (
	"math"
	"sort"
)

// Point is the cumulative mass at one distinct sample value
type Point struct {
	Value float64
	Mass  float64
}

// CumulativeDistribution is an empirical CDF, ascending by value
type CumulativeDistribution []Point

// At returns P(X <= v), 0 below the smallest value and for an empty distribution
func (d CumulativeDistribution) At(v float64) float64 {
	i := sort.Search(len(d), func(i int) bool { return d[i].Value > v })
	if i == 0 {
		return 0
	}
	return d[i-1].Mass
}

// FrequencyRow is one bar of the pdf/cdf chart
type FrequencyRow struct {
	Value     float64
	Frequency int
	PDF       float64
	CDF       float64
}

// cleanSample drops NaN entries and returns the rest sorted
func cleanSample(sample []float64) []float64 {
	clean := make([]float64, 0, len(sample))
	for _, v := range sample {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	sort.Float64s(clean)
	return clean
}

// Frequencies tabulates each distinct value with its count, share and running share
func Frequencies(sample []float64) []FrequencyRow {
	clean := cleanSample(sample)
	if len(clean) == 0 {
		return nil
	}
	n := float64(len(clean))

	var rows []FrequencyRow
	cdf := 0.0
	for i := 0; i < len(clean); {
		j := i
		for j < len(clean) && clean[j] == clean[i] {
			j++
		}
		count := j - i
		pdf := float64(count) / n
		cdf += pdf
		rows = append(rows, FrequencyRow{Value: clean[i], Frequency: count, PDF: pdf, CDF: cdf})
		i = j
	}
	return rows
}

// BuildCDF accumulates count(v)/n over the distinct values in ascending order.
// An empty sample gives an empty distribution.
func BuildCDF(sample []float64) CumulativeDistribution {
	freq := Frequencies(sample)
	if len(freq) == 0 {
		return CumulativeDistribution{}
	}
	d := make(CumulativeDistribution, len(freq))
	for i, f := range freq {
		d[i] = Point{Value: f.Value, Mass: f.CDF}
	}
	return d
}

// IntSample widens counts for the distribution functions
func IntSample(counts []int) []float64 {
	s := make([]float64, len(counts))
	for i, c := range counts {
		s[i] = float64(c)
	}
	return s
}
