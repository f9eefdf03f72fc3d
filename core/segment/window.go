package segment

import "sort"

// windowPartition scores every candidate boundary with a fixed-width
// comparison window and keeps the nBkps best-scoring, well-separated ones.
// Returns the ordered segment ends (including n).
func windowPartition(c costModel, n, nBkps, minSize, width int) []int {
	half := max(width, minSize)

	type scored struct {
		idx  int
		gain float64
	}
	var candidates []scored
	for t := half; t <= n-half; t++ {
		gain := c.cost(t-half, t+half) - c.cost(t-half, t) - c.cost(t, t+half)
		candidates = append(candidates, scored{idx: t, gain: gain})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].gain > candidates[j].gain
	})

	// Greedy peak selection with a minimum separation so adjacent indices of
	// the same regime shift do not all get picked.
	var picked []int
	for _, cand := range candidates {
		if len(picked) >= nBkps {
			break
		}
		ok := true
		for _, p := range picked {
			if absInt(cand.idx-p) < half {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, cand.idx)
		}
	}

	ends := append(picked, n)
	sortInts(ends)
	return ends
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
