package regz

import "sort"

// Aggregate sums advances that share a date and returns one entry per date,
// earliest first. The input slice is not modified.
//
//	[{1000, Jun 1}, {2000, Jun 15}, {1500, Jun 1}]
//	-> [{2500, Jun 1}, {2000, Jun 15}]
func Aggregate(advances []Advance) []AggregatedAdvance {
	if len(advances) == 0 {
		return nil
	}

	sorted := make([]Advance, len(advances))
	copy(sorted, advances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]AggregatedAdvance, 0, len(sorted))
	for _, a := range sorted {
		date := DateOf(a.Date.Time)
		// Sorted input puts a repeated date right after its first occurrence.
		if n := len(out); n > 0 && out[n-1].Date.Equal(date) {
			out[n-1].Amount = out[n-1].Amount.Add(a.Amount)
			continue
		}
		out = append(out, AggregatedAdvance{Amount: a.Amount, Date: date})
	}
	return out
}

// Advances converts aggregated entries back to plain advances, which lets
// an aggregated ledger be fed through Aggregate again.
func Advances(agg []AggregatedAdvance) []Advance {
	out := make([]Advance, len(agg))
	for i, a := range agg {
		out[i] = Advance{Amount: a.Amount, Date: a.Date}
	}
	return out
}
