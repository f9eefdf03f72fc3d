package schema

// Custom string types for type safety.
type (
	// Method represents a changepoint segmentation method.
	Method string

	// CostModel represents the per-segment error metric a method minimizes.
	CostModel string

	// DetectionStatus represents the status of a detection call.
	DetectionStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the series store.
	DatabaseBackend string
)

// All segmentation methods supported.
const (
	BICMethod      Method = "bic"      // exact optimal partition (dynamic programming)
	PELTMethod     Method = "pelt"     // linear-time penalized search (default)
	BinsegMethod   Method = "binseg"   // greedy top-down splitting
	BottomUpMethod Method = "bottomup" // greedy bottom-up merging
	WindowMethod   Method = "window"   // sliding-window discrepancy scoring
)

// All cost models supported.
const (
	L1Model     CostModel = "l1"     // absolute deviation from segment median
	L2Model     CostModel = "l2"     // squared deviation from segment mean (default)
	RBFModel    CostModel = "rbf"    // Gaussian-kernel discrepancy
	LinearModel CostModel = "linear" // residual of least-squares trend fit
	NormalModel CostModel = "normal" // Gaussian likelihood cost
	ARModel     CostModel = "ar"     // residual of autoregressive fit
)

// All detection statuses.
const (
	StatusSuccess DetectionStatus = "success"
	StatusError   DetectionStatus = "error"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All series store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Default detector parameters.
const (
	DefaultMinSize     = 3   // minimum points per segment
	DefaultNBkps       = 3   // target breakpoint count
	DefaultJump        = 5   // candidate index stride for binseg/bottomup
	DefaultWidth       = 5   // sliding window half-width
	DefaultPELTPenalty = 3.0 // per-segment penalty when none is supplied
)

// Bounds for the BIC penalty-to-breakpoint mapping.
const (
	MinBICBreakpoints = 1
	MaxBICBreakpoints = 10
)

// Monitored chokepoints with persisted ship-count series.
const (
	PipeBabElMandeb = "曼德海峡" // Bab-el-Mandeb
	PipeMalacca     = "马六甲海峡" // Strait of Malacca
)

// KnownPipeNames lists the chokepoints recognized by question parsing.
var KnownPipeNames = []string{PipeBabElMandeb, PipeMalacca}

// ValidMethods lists all valid segmentation methods.
var ValidMethods = map[Method]struct{}{
	BICMethod:      {},
	PELTMethod:     {},
	BinsegMethod:   {},
	BottomUpMethod: {},
	WindowMethod:   {},
}

// ValidCostModels lists all valid cost models.
var ValidCostModels = map[CostModel]struct{}{
	L1Model:     {},
	L2Model:     {},
	RBFModel:    {},
	LinearModel: {},
	NormalModel: {},
	ARModel:     {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid series store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// CongestionMarginRatio is the relative margin a segment mean must exceed the
// whole-window mean by before the segment is flagged as congested.
const CongestionMarginRatio = 1.1
