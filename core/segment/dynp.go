package segment

import "math"

// dynPartition finds the exact cost-minimizing partition of the first n points
// into nBkps+1 segments, each at least minSize long. Returns the ordered
// segment ends (including n) or false when the series cannot hold that many
// segments.
func dynPartition(c costModel, n, nBkps, minSize int) ([]int, bool) {
	segments := nBkps + 1
	if segments*minSize > n {
		return nil, false
	}

	inf := math.Inf(1)

	// best[j] holds the minimal cost of splitting signal[0:j] into the
	// current number of segments; arg tracks the split points for backtrack.
	best := make([]float64, n+1)
	arg := make([][]int, segments+1)
	for i := range arg {
		arg[i] = make([]int, n+1)
	}

	for j := 0; j <= n; j++ {
		if j >= minSize {
			best[j] = c.cost(0, j)
		} else {
			best[j] = inf
		}
	}

	for k := 2; k <= segments; k++ {
		next := make([]float64, n+1)
		for j := 0; j <= n; j++ {
			next[j] = inf
			if j < k*minSize {
				continue
			}
			for t := (k - 1) * minSize; t <= j-minSize; t++ {
				if best[t] == inf {
					continue
				}
				v := best[t] + c.cost(t, j)
				if v < next[j] {
					next[j] = v
					arg[k][j] = t
				}
			}
		}
		best = next
	}

	if best[n] == inf {
		return nil, false
	}

	// Backtrack from the full series.
	ends := make([]int, 0, segments)
	j := n
	for k := segments; k >= 2; k-- {
		ends = append(ends, j)
		j = arg[k][j]
	}
	ends = append(ends, j)

	// Reverse into ascending order; drop the leading zero if present.
	for i, l := 0, len(ends)-1; i < l; i, l = i+1, l-1 {
		ends[i], ends[l] = ends[l], ends[i]
	}
	if len(ends) > 0 && ends[0] == 0 {
		ends = ends[1:]
	}
	return ends, true
}
