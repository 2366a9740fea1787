package sweep

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MarginalGroup is one child-count slice of a normalized marginal sweep.
type MarginalGroup struct {
	NumChildren int
	Rows        []MarginalRow
}

// GroupMarginal splits normalized rows back into their child-count groups,
// preserving order. Rows are expected in normalized order (child count
// ascending, income ascending within a group).
func GroupMarginal(rows []MarginalRow) []MarginalGroup {
	var groups []MarginalGroup
	for _, row := range rows {
		if n := len(groups); n == 0 || groups[n-1].NumChildren != row.NumChildren {
			groups = append(groups, MarginalGroup{NumChildren: row.NumChildren})
		}
		g := &groups[len(groups)-1]
		g.Rows = append(g.Rows, row)
	}
	return groups
}

// GroupSummary aggregates the marginal benefit across one child-count group.
type GroupSummary struct {
	NumChildren    int     `json:"num_children"`
	Points         int     `json:"points"`
	MeanMarginal   float64 `json:"mean_marginal"`
	StdDevMarginal float64 `json:"stddev_marginal"`
	MinMarginal    float64 `json:"min_marginal"`
	MaxMarginal    float64 `json:"max_marginal"`
}

// Summarize computes per-group marginal benefit statistics for a normalized
// sweep, in group order.
func Summarize(rows []MarginalRow) []GroupSummary {
	groups := GroupMarginal(rows)
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		vals := make([]float64, len(g.Rows))
		for i, row := range g.Rows {
			vals[i] = row.MarginalBenefit
		}
		s := GroupSummary{
			NumChildren:  g.NumChildren,
			Points:       len(vals),
			MeanMarginal: stat.Mean(vals, nil),
			MinMarginal:  floats.Min(vals),
			MaxMarginal:  floats.Max(vals),
		}
		// StdDev needs two samples; a single-point sweep has no spread.
		if len(vals) > 1 {
			s.StdDevMarginal = stat.StdDev(vals, nil)
		}
		out = append(out, s)
	}
	return out
}
