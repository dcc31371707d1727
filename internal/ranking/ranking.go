// Package ranking derives rank and percentile for every result of a test.
// Each new submission triggers a full recompute over that test's results;
// there is no incremental order-statistics maintenance.
package ranking

import (
	"math"
	"sort"
)

// Entry is the slice of a result the recalculation needs.
type Entry struct {
	ResultID      string
	ObtainedMarks float64
	TotalTime     int // seconds
}

// Standing is the recomputed placement for one result.
type Standing struct {
	ResultID   string
	Rank       int
	Percentile float64
}

// Compute sorts entries by obtained marks descending, then total time
// ascending (faster completion wins ties). Entries equal on both keys share
// a rank, and the next distinct entry takes its 1-based position, so marks
// [90, 70, 90] with equal times rank [1, 3, 1]. Percentile is
// (N - rank + 1) / N * 100 rounded to two decimals.
func Compute(entries []Entry) []Standing {
	n := len(entries)
	if n == 0 {
		return nil
	}

	sorted := make([]Entry, n)
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ObtainedMarks != sorted[j].ObtainedMarks {
			return sorted[i].ObtainedMarks > sorted[j].ObtainedMarks
		}
		return sorted[i].TotalTime < sorted[j].TotalTime
	})

	standings := make([]Standing, n)
	rank := 1
	for i, e := range sorted {
		if i > 0 && (e.ObtainedMarks != sorted[i-1].ObtainedMarks || e.TotalTime != sorted[i-1].TotalTime) {
			rank = i + 1
		}
		percentile := math.Round(float64(n-rank+1)/float64(n)*100*100) / 100
		standings[i] = Standing{ResultID: e.ResultID, Rank: rank, Percentile: percentile}
	}
	return standings
}
