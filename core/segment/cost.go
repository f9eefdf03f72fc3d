package segment

import (
	"math"
	"sort"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// costModel evaluates the homogeneity cost of signal[start:end).
// Lower cost means a more internally consistent segment.
type costModel interface {
	// cost returns the segment cost for the half-open range [start, end).
	cost(start, end int) float64

	// minSize returns the smallest segment length the model can score.
	minSize() int
}

// newCostModel builds the cost model for a validated model name.
func newCostModel(name schema.CostModel, signal []float64) costModel {
	switch name {
	case schema.L1Model:
		return newCostL1(signal)
	case schema.RBFModel:
		return newCostRBF(signal)
	case schema.LinearModel:
		return newCostLinear(signal)
	case schema.NormalModel:
		return newCostNormal(signal)
	case schema.ARModel:
		return newCostAR(signal, defaultAROrder)
	default:
		return newCostL2(signal)
	}
}

// costL2 scores segments by squared deviation from the segment mean.
// Prefix sums make each query O(1).
type costL2 struct {
	s1 []float64
	s2 []float64
}

func newCostL2(signal []float64) *costL2 {
	n := len(signal)
	c := &costL2{s1: make([]float64, n+1), s2: make([]float64, n+1)}
	for i, v := range signal {
		c.s1[i+1] = c.s1[i] + v
		c.s2[i+1] = c.s2[i] + v*v
	}
	return c
}

func (c *costL2) cost(start, end int) float64 {
	n := float64(end - start)
	if n <= 0 {
		return 0
	}
	s := c.s1[end] - c.s1[start]
	q := c.s2[end] - c.s2[start]
	return q - s*s/n
}

func (c *costL2) minSize() int { return 1 }

// costL1 scores segments by absolute deviation from the segment median.
type costL1 struct {
	signal []float64
}

func newCostL1(signal []float64) *costL1 {
	return &costL1{signal: signal}
}

func (c *costL1) cost(start, end int) float64 {
	seg := make([]float64, end-start)
	copy(seg, c.signal[start:end])
	sort.Float64s(seg)
	med := segMedian(seg)
	var sum float64
	for _, v := range seg {
		sum += math.Abs(v - med)
	}
	return sum
}

func (c *costL1) minSize() int { return 2 }

// segMedian returns the median of an already-sorted slice.
func segMedian(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// normalVarEps keeps the log argument positive on constant segments.
const normalVarEps = 1e-6

// costNormal scores segments by Gaussian likelihood, n * log(variance).
type costNormal struct {
	l2 *costL2
}

func newCostNormal(signal []float64) *costNormal {
	return &costNormal{l2: newCostL2(signal)}
}

func (c *costNormal) cost(start, end int) float64 {
	n := float64(end - start)
	if n <= 0 {
		return 0
	}
	variance := c.l2.cost(start, end) / n
	return n * math.Log(variance+normalVarEps)
}

func (c *costNormal) minSize() int { return 2 }
