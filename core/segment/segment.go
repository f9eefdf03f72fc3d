// Package segment implements offline changepoint segmentation for daily
// ship-count series. Five search methods are supported over a set of
// selectable per-segment cost models.
package segment

import (
	"fmt"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Config holds the parameters for a detection call.
type Config struct {
	Method  schema.Method    // segmentation method (default pelt)
	Model   schema.CostModel // cost model (default l2)
	MinSize int              // minimum points per segment (default 3)
	Penalty float64          // penalty override; 0 means method default
	NBkps   int              // target breakpoint count (default 3)
	Jump    int              // candidate index stride for binseg/bottomup (default 5)
	Width   int              // sliding window half-width (default 5)
}

// DefaultConfig returns the detector defaults.
func DefaultConfig() Config {
	return Config{
		Method:  schema.PELTMethod,
		Model:   schema.L2Model,
		MinSize: schema.DefaultMinSize,
		NBkps:   schema.DefaultNBkps,
		Jump:    schema.DefaultJump,
		Width:   schema.DefaultWidth,
	}
}

// normalize fills zero-valued fields with defaults. The method and model
// names are left as-is so Detect can report unknown names.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Method == "" {
		c.Method = def.Method
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.MinSize <= 0 {
		c.MinSize = def.MinSize
	}
	if c.NBkps <= 0 {
		c.NBkps = def.NBkps
	}
	if c.Jump <= 0 {
		c.Jump = def.Jump
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	return c
}

// Validate checks the method and model names against their enumerations.
func (c Config) Validate() error {
	c = c.normalize()
	if _, ok := schema.ValidMethods[c.Method]; !ok {
		return fmt.Errorf("%w: unknown method %q", schema.ErrInvalidParameter, c.Method)
	}
	if _, ok := schema.ValidCostModels[c.Model]; !ok {
		return fmt.Errorf("%w: unknown model %q", schema.ErrInvalidParameter, c.Model)
	}
	return nil
}

// Detector wraps a validated configuration. Construct with New so the
// enumeration checks happen eagerly instead of on first use.
type Detector struct {
	cfg Config
}

// New returns a Detector with the given configuration, or an error when the
// method or model name falls outside its enumerated set.
func New(cfg Config) (*Detector, error) {
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Config returns a copy of the detector's current configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// SetMethod updates the segmentation method after validating it.
func (d *Detector) SetMethod(m schema.Method) error {
	if _, ok := schema.ValidMethods[m]; !ok {
		return fmt.Errorf("%w: unknown method %q", schema.ErrInvalidParameter, m)
	}
	d.cfg.Method = m
	return nil
}

// SetModel updates the cost model after validating it.
func (d *Detector) SetModel(m schema.CostModel) error {
	if _, ok := schema.ValidCostModels[m]; !ok {
		return fmt.Errorf("%w: unknown model %q", schema.ErrInvalidParameter, m)
	}
	d.cfg.Model = m
	return nil
}

// SetParams applies a bag of named parameters. Known keys are applied,
// unknown keys are skipped with a warning. Method and model values still go
// through the enumeration checks.
func (d *Detector) SetParams(params map[string]any) error {
	for key, val := range params {
		switch key {
		case "method":
			if s, ok := val.(string); ok {
				if err := d.SetMethod(schema.Method(s)); err != nil {
					return err
				}
			}
		case "model":
			if s, ok := val.(string); ok {
				if err := d.SetModel(schema.CostModel(s)); err != nil {
					return err
				}
			}
		case "min_size":
			if n, ok := asInt(val); ok && n > 0 {
				d.cfg.MinSize = n
			}
		case "penalty":
			if f, ok := asFloat(val); ok && f > 0 {
				d.cfg.Penalty = f
			}
		case "n_bkps":
			if n, ok := asInt(val); ok && n > 0 {
				d.cfg.NBkps = n
			}
		case "jump":
			if n, ok := asInt(val); ok && n > 0 {
				d.cfg.Jump = n
			}
		case "width":
			if n, ok := asInt(val); ok && n > 0 {
				d.cfg.Width = n
			}
		default:
			contract.LogWarn("Ignoring unknown detector parameter", fmt.Errorf("key %q", key))
		}
	}
	return nil
}

// Detect runs the configured method over the signal.
func (d *Detector) Detect(signal []float64) schema.DetectionResult {
	return Detect(signal, d.cfg)
}

// Detect segments the signal and returns the boundary indices between
// statistically stable regimes. Failures at this stage (short series,
// unknown method or model) are reported in the result, never as a Go error,
// so callers can tell "no signal" apart from a crash.
func Detect(signal []float64, cfg Config) schema.DetectionResult {
	cfg = cfg.normalize()
	res := schema.DetectionResult{Method: cfg.Method, ChangePoints: []int{}}

	if _, ok := schema.ValidMethods[cfg.Method]; !ok {
		res.Status = schema.StatusError
		res.Message = fmt.Sprintf("Unknown method: %s", cfg.Method)
		return res
	}
	if _, ok := schema.ValidCostModels[cfg.Model]; !ok {
		res.Status = schema.StatusError
		res.Message = fmt.Sprintf("Unknown model: %s", cfg.Model)
		return res
	}
	if len(signal) < cfg.MinSize {
		res.Status = schema.StatusError
		res.Message = fmt.Sprintf("Time series too short: %d points, need at least %d", len(signal), cfg.MinSize)
		return res
	}

	c := newCostModel(cfg.Model, signal)
	n := len(signal)
	minSize := max(cfg.MinSize, c.minSize())

	var ends []int
	switch cfg.Method {
	case schema.BICMethod:
		nBkps := cfg.NBkps
		if cfg.Penalty > 0 {
			// A numeric penalty is inversely scaled into a bounded count.
			nBkps = min(schema.MaxBICBreakpoints, max(schema.MinBICBreakpoints, int(10/cfg.Penalty)))
		}
		var ok bool
		ends, ok = dynPartition(c, n, nBkps, minSize)
		if !ok {
			res.Status = schema.StatusError
			res.Message = fmt.Sprintf("Time series too short: cannot hold %d segments of minimum size %d", nBkps+1, minSize)
			return res
		}
	case schema.PELTMethod:
		pen := cfg.Penalty
		if pen <= 0 {
			pen = schema.DefaultPELTPenalty
		}
		ends = peltPartition(c, n, pen, minSize)
	case schema.BinsegMethod:
		ends = binsegPartition(c, n, cfg.NBkps, minSize, cfg.Jump)
	case schema.BottomUpMethod:
		ends = bottomUpPartition(c, n, cfg.NBkps, minSize, cfg.Jump)
	case schema.WindowMethod:
		ends = windowPartition(c, n, cfg.NBkps, minSize, cfg.Width)
	}

	// The trailing boundary equal to the series length marks end-of-series,
	// not a real event.
	for len(ends) > 0 && ends[len(ends)-1] >= n {
		ends = ends[:len(ends)-1]
	}
	res.Status = schema.StatusSuccess
	res.ChangePoints = append(res.ChangePoints, ends...)
	return res
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
