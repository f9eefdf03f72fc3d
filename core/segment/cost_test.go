package segment

import (
	"testing"

	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCostL2 checks squared-deviation costs against hand-computed values.
func TestCostL2(t *testing.T) {
	c := newCostL2([]float64{1, 1, 1, 5, 5, 5})

	assert.InDelta(t, 0, c.cost(0, 3), 1e-9, "constant segment has zero cost")
	assert.InDelta(t, 0, c.cost(3, 6), 1e-9)

	// Whole series: mean 3, each point deviates by 2 -> 6 * 4 = 24.
	assert.InDelta(t, 24, c.cost(0, 6), 1e-9)
}

// TestCostL1 checks absolute-deviation costs against hand-computed values.
func TestCostL1(t *testing.T) {
	c := newCostL1([]float64{1, 2, 3, 4, 5})

	// Median 3, deviations 2+1+0+1+2 = 6.
	assert.InDelta(t, 6, c.cost(0, 5), 1e-9)
	assert.InDelta(t, 0, c.cost(2, 3), 1e-9)

	// Even-length segment: median of {1,2,3,4} is 2.5 -> 1.5+0.5+0.5+1.5 = 4.
	assert.InDelta(t, 4, c.cost(0, 4), 1e-9)
}

// TestCostRBF checks kernel discrepancy is zero on constant segments and
// positive on mixed ones.
func TestCostRBF(t *testing.T) {
	c := newCostRBF([]float64{0, 0, 0, 10, 10, 10})

	assert.InDelta(t, 0, c.cost(0, 3), 1e-9)
	assert.Greater(t, c.cost(0, 6), c.cost(0, 3))
}

// TestCostRBFConstantSignal checks the bandwidth fallback when every pairwise
// distance is zero.
func TestCostRBFConstantSignal(t *testing.T) {
	c := newCostRBF([]float64{7, 7, 7, 7})
	assert.InDelta(t, 0, c.cost(0, 4), 1e-9)
}

// TestCostLinear checks a perfect trend has near-zero residual.
func TestCostLinear(t *testing.T) {
	c := newCostLinear([]float64{1, 2, 3, 4, 5, 6})
	assert.InDelta(t, 0, c.cost(0, 6), 1e-9)

	broken := newCostLinear([]float64{1, 2, 3, 10, 2, 1})
	assert.Greater(t, broken.cost(0, 6), 1.0)
}

// TestCostNormal checks constant segments score lower than noisy ones.
func TestCostNormal(t *testing.T) {
	c := newCostNormal([]float64{1, 1, 1, 9, 1, 9})
	assert.Less(t, c.cost(0, 3), c.cost(3, 6))
}

// TestCostAR checks a self-predicting series has lower residual than noise.
func TestCostAR(t *testing.T) {
	// Alternating series is perfectly predicted by one lag.
	c := newCostAR([]float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 2}, 1)
	assert.InDelta(t, 0, c.cost(0, 10), 1e-6)
}

// TestSolveLinearSystem checks the dense solver on a known system.
func TestSolveLinearSystem(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 -> x = 1, y = 3.
	a := []float64{2, 1, 1, 3}
	b := []float64{5, 10}
	x, ok := solveLinearSystem(a, b, 2)
	require.True(t, ok)
	assert.InDelta(t, 1, x[0], 1e-9)
	assert.InDelta(t, 3, x[1], 1e-9)

	// Singular system.
	_, ok = solveLinearSystem([]float64{1, 2, 2, 4}, []float64{1, 2}, 2)
	assert.False(t, ok)
}

// TestNewCostModelDispatch checks the factory covers every enumerated model.
func TestNewCostModelDispatch(t *testing.T) {
	signal := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for model := range schema.ValidCostModels {
		c := newCostModel(model, signal)
		require.NotNil(t, c, "model %s", model)
		assert.GreaterOrEqual(t, c.minSize(), 1)
	}
}
