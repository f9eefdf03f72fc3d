package segment

// bottomUpPartition starts from the finest admissible grid (a boundary every
// jump indices) and merges the least-costly adjacent pair until nBkps
// boundaries remain. Returns the ordered segment ends (including n).
func bottomUpPartition(c costModel, n, nBkps, minSize, jump int) []int {
	// Build the initial grid, keeping every segment at least minSize long.
	step := max(jump, minSize)
	var ends []int
	for t := step; t < n; t += step {
		if n-t < minSize {
			break
		}
		ends = append(ends, t)
	}
	ends = append(ends, n)

	// Merge the cheapest adjacent pair until the target count is reached.
	for len(ends)-1 > nBkps {
		bestIdx := -1
		bestGain := 0.0
		start := 0
		for i := 0; i < len(ends)-1; i++ {
			mid, stop := ends[i], ends[i+1]
			gain := c.cost(start, stop) - c.cost(start, mid) - c.cost(mid, stop)
			if bestIdx == -1 || gain < bestGain {
				bestGain = gain
				bestIdx = i
			}
			start = mid
		}
		if bestIdx == -1 {
			break
		}
		ends = append(ends[:bestIdx], ends[bestIdx+1:]...)
	}
	return ends
}
