package segment

import (
	"math"
	"sort"
)

// costRBF scores segments by Gaussian-kernel discrepancy. The bandwidth is
// chosen with the median heuristic over all pairwise squared distances, and a
// 2D prefix sum over the Gram matrix makes each query O(1).
type costRBF struct {
	n    int
	gram []float64 // (n+1)×(n+1) prefix sums, row-major
}

func newCostRBF(signal []float64) *costRBF {
	n := len(signal)
	gamma := rbfGamma(signal)

	c := &costRBF{n: n, gram: make([]float64, (n+1)*(n+1))}
	stride := n + 1
	for i := range n {
		for j := range n {
			d := signal[i] - signal[j]
			k := math.Exp(-gamma * d * d)
			c.gram[(i+1)*stride+(j+1)] = k +
				c.gram[i*stride+(j+1)] +
				c.gram[(i+1)*stride+j] -
				c.gram[i*stride+j]
		}
	}
	return c
}

// rbfGamma computes the inverse median of pairwise squared distances.
// Falls back to 1 on constant signals where the median is zero.
func rbfGamma(signal []float64) float64 {
	n := len(signal)
	if n < 2 {
		return 1
	}
	dists := make([]float64, 0, n*(n-1)/2)
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := signal[i] - signal[j]
			dists = append(dists, d*d)
		}
	}
	sort.Float64s(dists)
	med := segMedian(dists)
	if med <= 0 {
		return 1
	}
	return 1 / med
}

func (c *costRBF) cost(start, end int) float64 {
	n := float64(end - start)
	if n <= 0 {
		return 0
	}
	stride := c.n + 1
	sum := c.gram[end*stride+end] -
		c.gram[start*stride+end] -
		c.gram[end*stride+start] +
		c.gram[start*stride+start]
	return n - sum/n
}

func (c *costRBF) minSize() int { return 1 }
