package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Default values for configuration.
const (
	DefaultLookbackMonths = 3
	DefaultLookbackDays   = 0
	DefaultPrecision      = 1
	DefaultAITimeout      = 120 * time.Second
	DefaultCacheTTL       = 24 * time.Hour
	DefaultHTTPAddr       = ":8080"
)

// DateTimeFormat is the default date representation on the command line.
const DateTimeFormat = "2006-01-02"

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	// Detection target
	PipeName       string    // monitored chokepoint
	RunDate        time.Time // end of the analysis window
	LookbackMonths int
	LookbackDays   int

	// Detector knobs
	Method  schema.Method
	Model   schema.CostModel
	MinSize int
	Penalty float64
	NBkps   int
	Jump    int
	Width   int

	// Explanation chain
	ExplainAll     bool // explain every flagged event instead of only the last
	PersistRecords bool // write detection_results_<date>.json after a run
	RecordsDir     string

	// Language services. Credentials are injected configuration only,
	// resolved from flags, env or the config file.
	SearchAPIBase   string
	SearchAPIKey    string
	SearchModel     string
	RephraseAPIBase string
	RephraseAPIKey  string
	RephraseModel   string
	AITimeout       time.Duration

	// Series store
	SeriesBackend   schema.DatabaseBackend
	SeriesDBConnect string // Please use env var as this is plaintext

	// Optional explanation cache; disabled unless an address is configured.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Upstream ingestion (BCI openapi)
	BCIBaseURL string
	BCIAppID   string
	BCIAppKey  string
	BCIClient  string

	// Output
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	UseColors  bool

	// Servers
	HTTPAddr string
	LogLevel string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Pipe            string  `mapstructure:"pipe"`
	RunDate         string  `mapstructure:"run-date"`
	LookbackMonths  int     `mapstructure:"lookback-months"`
	LookbackDays    int     `mapstructure:"lookback-days"`
	Method          string  `mapstructure:"method"`
	Model           string  `mapstructure:"model"`
	MinSize         int     `mapstructure:"min-size"`
	Penalty         float64 `mapstructure:"penalty"`
	NBkps           int     `mapstructure:"n-bkps"`
	Jump            int     `mapstructure:"jump"`
	Width           int     `mapstructure:"width"`
	Output          string  `mapstructure:"output"`
	OutputFile      string  `mapstructure:"output-file"`
	Precision       int     `mapstructure:"precision"`
	Color           string  `mapstructure:"color"`
	SeriesBackend   string  `mapstructure:"series-backend"`
	SeriesDBConnect string  `mapstructure:"series-db-connect"`

	// --- Explanation chain ---
	ExplainAll      bool   `mapstructure:"explain-all"`
	PersistRecords  bool   `mapstructure:"persist-records"`
	RecordsDir      string `mapstructure:"records-dir"`
	SearchAPIBase   string `mapstructure:"search-api-base"`
	SearchAPIKey    string `mapstructure:"search-api-key"`
	SearchModel     string `mapstructure:"search-model"`
	RephraseAPIBase string `mapstructure:"rephrase-api-base"`
	RephraseAPIKey  string `mapstructure:"rephrase-api-key"`
	RephraseModel   string `mapstructure:"rephrase-model"`
	AITimeoutSecs   int    `mapstructure:"ai-timeout"`

	// --- Optional redis explanation cache ---
	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	CacheTTLHours int    `mapstructure:"cache-ttl-hours"`

	// --- Upstream ingestion ---
	BCIBaseURL string `mapstructure:"bci-base-url"`
	BCIAppID   string `mapstructure:"bci-app-id"`
	BCIAppKey  string `mapstructure:"bci-app-key"`
	BCIClient  string `mapstructure:"bci-client"`

	// --- Servers ---
	HTTPAddr string `mapstructure:"http-addr"`
	LogLevel string `mapstructure:"log-level"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTarget creates a copy of the Config pointed at a new channel and
// run date. MCP and HTTP handlers use this so concurrent requests never share
// mutable state.
func (c *Config) CloneWithTarget(pipeName string, runDate time.Time) *Config {
	clone := c.Clone()
	clone.PipeName = pipeName
	clone.RunDate = runDate
	return clone
}

// RunDateID returns the run date as a YYYYMMDD key.
func (c *Config) RunDateID() int {
	return schema.TimeToDateID(c.RunDate)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateDetectorInputs(cfg, input); err != nil {
		return err
	}
	if err := processRunDate(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := validateOutputConfig(cfg, input); err != nil {
		return err
	}
	processServiceConfig(cfg, input)
	return nil
}

// validateDetectorInputs checks the detector knobs against the enumerations.
func validateDetectorInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Method = schema.Method(strings.ToLower(input.Method))
	if _, ok := schema.ValidMethods[cfg.Method]; !ok {
		return fmt.Errorf("%w: invalid method '%s'. must be bic, pelt, binseg, bottomup, window", schema.ErrInvalidParameter, input.Method)
	}
	cfg.Model = schema.CostModel(strings.ToLower(input.Model))
	if _, ok := schema.ValidCostModels[cfg.Model]; !ok {
		return fmt.Errorf("%w: invalid model '%s'. must be l1, l2, rbf, linear, normal, ar", schema.ErrInvalidParameter, input.Model)
	}
	if input.MinSize < 1 {
		return fmt.Errorf("%w: min-size must be at least 1", schema.ErrInvalidParameter)
	}
	if input.Penalty < 0 {
		return fmt.Errorf("%w: penalty cannot be negative", schema.ErrInvalidParameter)
	}
	cfg.MinSize = input.MinSize
	cfg.Penalty = input.Penalty
	cfg.NBkps = input.NBkps
	cfg.Jump = input.Jump
	cfg.Width = input.Width

	cfg.PipeName = strings.TrimSpace(input.Pipe)
	cfg.LookbackMonths = input.LookbackMonths
	cfg.LookbackDays = input.LookbackDays
	if cfg.LookbackMonths < 0 || cfg.LookbackDays < 0 {
		return fmt.Errorf("%w: lookback cannot be negative", schema.ErrInvalidParameter)
	}
	if cfg.LookbackMonths == 0 && cfg.LookbackDays == 0 {
		cfg.LookbackMonths = DefaultLookbackMonths
	}
	return nil
}

// processRunDate resolves the run date, defaulting to today.
func processRunDate(cfg *Config, input *ConfigRawInput) error {
	if input.RunDate == "" {
		cfg.RunDate = time.Now().UTC().Truncate(24 * time.Hour)
		return nil
	}
	t, err := ParseRunDate(input.RunDate)
	if err != nil {
		return err
	}
	cfg.RunDate = t
	return nil
}

// validateBackendConfig validates the series store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.SeriesBackend = schema.DatabaseBackend(strings.ToLower(input.SeriesBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.SeriesBackend]; !ok {
		return fmt.Errorf("invalid series backend '%s'. must be sqlite, mysql, postgresql, none", input.SeriesBackend)
	}
	cfg.SeriesDBConnect = input.SeriesDBConnect
	return ValidateDatabaseConnectionString(cfg.SeriesBackend, cfg.SeriesDBConnect)
}

// validateOutputConfig validates output mode and rendering knobs.
func validateOutputConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output '%s'. must be text, json, csv, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	precision := input.Precision
	if precision < 1 {
		precision = 1
	}
	if precision > 2 {
		precision = 2
	}
	cfg.Precision = precision

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color value: %w", err)
	}
	cfg.UseColors = useColors
	return nil
}

// processServiceConfig copies the language service, cache, ingestion and
// server settings. These have no enumeration to check; empty values disable
// the corresponding feature.
func processServiceConfig(cfg *Config, input *ConfigRawInput) {
	cfg.ExplainAll = input.ExplainAll
	cfg.PersistRecords = input.PersistRecords
	cfg.RecordsDir = input.RecordsDir

	cfg.SearchAPIBase = input.SearchAPIBase
	cfg.SearchAPIKey = input.SearchAPIKey
	cfg.SearchModel = input.SearchModel
	cfg.RephraseAPIBase = input.RephraseAPIBase
	cfg.RephraseAPIKey = input.RephraseAPIKey
	cfg.RephraseModel = input.RephraseModel
	cfg.AITimeout = DefaultAITimeout
	if input.AITimeoutSecs > 0 {
		cfg.AITimeout = time.Duration(input.AITimeoutSecs) * time.Second
	}

	cfg.RedisAddr = input.RedisAddr
	cfg.RedisPassword = input.RedisPassword
	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTLHours > 0 {
		cfg.CacheTTL = time.Duration(input.CacheTTLHours) * time.Hour
	}

	cfg.BCIBaseURL = input.BCIBaseURL
	cfg.BCIAppID = input.BCIAppID
	cfg.BCIAppKey = input.BCIAppKey
	cfg.BCIClient = input.BCIClient

	cfg.HTTPAddr = input.HTTPAddr
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	cfg.LogLevel = input.LogLevel
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("series-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("series-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}
