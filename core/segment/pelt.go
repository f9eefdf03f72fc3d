package segment

import "math"

// peltPartition finds the minimum-cost partition under a fixed per-segment
// penalty using the pruned exact linear time search. Returns the ordered
// segment ends (including n).
func peltPartition(c costModel, n int, penalty float64, minSize int) []int {
	inf := math.Inf(1)

	// f[t] is the optimal cost of signal[0:t] plus penalties; prev[t] is the
	// start of the last segment in that optimum.
	f := make([]float64, n+1)
	prev := make([]int, n+1)
	f[0] = -penalty
	for t := 1; t <= n; t++ {
		f[t] = inf
	}

	candidates := []int{0}
	for t := minSize; t <= n; t++ {
		for _, s := range candidates {
			if t-s < minSize {
				continue
			}
			v := f[s] + c.cost(s, t) + penalty
			if v < f[t] {
				f[t] = v
				prev[t] = s
			}
		}

		// Prune candidates that can never beat the current optimum.
		kept := candidates[:0]
		for _, s := range candidates {
			if t-s < minSize || f[s]+c.cost(s, t) <= f[t] {
				kept = append(kept, s)
			}
		}
		candidates = append(kept, t)
	}

	// Backtrack.
	var ends []int
	for t := n; t > 0; t = prev[t] {
		ends = append(ends, t)
	}
	for i, l := 0, len(ends)-1; i < l; i, l = i+1, l-1 {
		ends[i], ends[l] = ends[l], ends[i]
	}
	return ends
}
