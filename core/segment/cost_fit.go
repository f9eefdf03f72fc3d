package segment

// Regression-based cost models: linear trend fit and autoregressive fit.
// Both score a segment by the residual sum of squares of a least-squares fit.

// costLinear fits x_t = a*t + b over the segment and returns the RSS.
type costLinear struct {
	signal []float64
}

func newCostLinear(signal []float64) *costLinear {
	return &costLinear{signal: signal}
}

func (c *costLinear) cost(start, end int) float64 {
	n := float64(end - start)
	if n < 2 {
		return 0
	}
	var st, sx float64
	for t := start; t < end; t++ {
		st += float64(t)
		sx += c.signal[t]
	}
	tMean := st / n
	xMean := sx / n

	var cov, tVar float64
	for t := start; t < end; t++ {
		dt := float64(t) - tMean
		cov += dt * (c.signal[t] - xMean)
		tVar += dt * dt
	}
	var slope float64
	if tVar > 0 {
		slope = cov / tVar
	}
	intercept := xMean - slope*tMean

	var rss float64
	for t := start; t < end; t++ {
		r := c.signal[t] - slope*float64(t) - intercept
		rss += r * r
	}
	return rss
}

func (c *costLinear) minSize() int { return 3 }

// defaultAROrder is the autoregressive order used by the ar cost model.
const defaultAROrder = 4

// costAR fits x_t = a0 + a1*x_{t-1} + ... + ap*x_{t-p} over the segment and
// returns the RSS. The order shrinks when a segment is too short to fill the
// design matrix.
type costAR struct {
	signal []float64
	order  int
}

func newCostAR(signal []float64, order int) *costAR {
	return &costAR{signal: signal, order: order}
}

func (c *costAR) cost(start, end int) float64 {
	segLen := end - start
	p := min(c.order, segLen-2)
	if p < 1 {
		// Too short for any lag; fall back to deviation from the mean.
		var sum, sq float64
		for t := start; t < end; t++ {
			sum += c.signal[t]
			sq += c.signal[t] * c.signal[t]
		}
		n := float64(segLen)
		if n <= 0 {
			return 0
		}
		return sq - sum*sum/n
	}

	// Normal equations for the (p+1)-coefficient regression.
	dim := p + 1
	ata := make([]float64, dim*dim)
	atb := make([]float64, dim)
	row := make([]float64, dim)
	for t := start + p; t < end; t++ {
		row[0] = 1
		for lag := 1; lag <= p; lag++ {
			row[lag] = c.signal[t-lag]
		}
		y := c.signal[t]
		for i := range dim {
			atb[i] += row[i] * y
			for j := range dim {
				ata[i*dim+j] += row[i] * row[j]
			}
		}
	}

	coef, ok := solveLinearSystem(ata, atb, dim)
	if !ok {
		return 0
	}

	var rss float64
	for t := start + p; t < end; t++ {
		pred := coef[0]
		for lag := 1; lag <= p; lag++ {
			pred += coef[lag] * c.signal[t-lag]
		}
		r := c.signal[t] - pred
		rss += r * r
	}
	return rss
}

func (c *costAR) minSize() int { return c.order + 1 }

// solveLinearSystem solves a dense dim×dim system with Gaussian elimination
// and partial pivoting. Returns false for singular systems.
func solveLinearSystem(a []float64, b []float64, dim int) ([]float64, bool) {
	// Work on copies so callers can reuse their buffers.
	m := make([]float64, len(a))
	copy(m, a)
	x := make([]float64, len(b))
	copy(x, b)

	for col := range dim {
		pivot := col
		for r := col + 1; r < dim; r++ {
			if abs(m[r*dim+col]) > abs(m[pivot*dim+col]) {
				pivot = r
			}
		}
		if abs(m[pivot*dim+col]) < 1e-12 {
			return nil, false
		}
		if pivot != col {
			for j := range dim {
				m[col*dim+j], m[pivot*dim+j] = m[pivot*dim+j], m[col*dim+j]
			}
			x[col], x[pivot] = x[pivot], x[col]
		}
		for r := col + 1; r < dim; r++ {
			f := m[r*dim+col] / m[col*dim+col]
			for j := col; j < dim; j++ {
				m[r*dim+j] -= f * m[col*dim+j]
			}
			x[r] -= f * x[col]
		}
	}
	for col := dim - 1; col >= 0; col-- {
		for j := col + 1; j < dim; j++ {
			x[col] -= m[col*dim+j] * x[j]
		}
		x[col] /= m[col*dim+col]
	}
	return x, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
