package segment

// binsegPartition repeatedly splits the series at the locally best point
// until nBkps splits were made or no admissible split remains. Candidate
// indices are restricted to multiples of jump for speed. Returns the ordered
// segment ends (including n).
func binsegPartition(c costModel, n, nBkps, minSize, jump int) []int {
	splits := []int{}
	segments := [][2]int{{0, n}}

	for len(splits) < nBkps {
		bestGain := 0.0
		bestIdx := -1
		bestSeg := -1
		for si, seg := range segments {
			start, end := seg[0], seg[1]
			whole := c.cost(start, end)
			for t := alignUp(start+minSize, jump); t <= end-minSize; t += jump {
				gain := whole - c.cost(start, t) - c.cost(t, end)
				if bestIdx == -1 || gain > bestGain {
					bestGain = gain
					bestIdx = t
					bestSeg = si
				}
			}
		}
		if bestIdx == -1 {
			break
		}
		start, end := segments[bestSeg][0], segments[bestSeg][1]
		segments[bestSeg] = [2]int{start, bestIdx}
		segments = append(segments, [2]int{bestIdx, end})
		splits = append(splits, bestIdx)
	}

	ends := append(splits, n)
	sortInts(ends)
	return ends
}

// alignUp rounds v up to the next multiple of step.
func alignUp(v, step int) int {
	if step <= 1 {
		return v
	}
	rem := v % step
	if rem == 0 {
		return v
	}
	return v + step - rem
}

// sortInts sorts a small slice in place; insertion sort keeps this
// allocation-free for the handful of boundaries involved.
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
