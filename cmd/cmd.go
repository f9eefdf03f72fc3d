// Package cmd defines the command-line interface for sisimcp.
package cmd

import (
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeFetchCmd)
	storeCmd.AddCommand(storeStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("pipe", "p", "", "Monitored channel to analyze (e.g. 曼德海峡, 马六甲海峡)")
	rootCmd.PersistentFlags().String("run-date", "", "End of the analysis window as YYYY-MM-DD or YYYYMMDD (default today)")
	rootCmd.PersistentFlags().Int("lookback-months", contract.DefaultLookbackMonths, "Months of history before the run date")
	rootCmd.PersistentFlags().Int("lookback-days", contract.DefaultLookbackDays, "Extra days of history before the run date")
	rootCmd.PersistentFlags().String("method", string(schema.PELTMethod), "Segmentation method: bic or pelt or binseg or bottomup or window")
	rootCmd.PersistentFlags().String("model", string(schema.L2Model), "Cost model: l1 or l2 or rbf or linear or normal or ar")
	rootCmd.PersistentFlags().Int("min-size", schema.DefaultMinSize, "Minimum points per segment")
	rootCmd.PersistentFlags().Float64("penalty", 0, "Segmentation penalty (0 = method default)")
	rootCmd.PersistentFlags().Int("n-bkps", schema.DefaultNBkps, "Target breakpoint count for binseg/bottomup/window")
	rootCmd.PersistentFlags().Int("jump", schema.DefaultJump, "Candidate index stride for binseg/bottomup")
	rootCmd.PersistentFlags().Int("width", schema.DefaultWidth, "Sliding window half-width for the window method")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("series-backend", string(schema.SQLiteBackend), "Series store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("series-db-connect", "", "Database connection string for mysql/postgresql (please use env var as this is plaintext)")
	rootCmd.PersistentFlags().Bool("explain-all", false, "Explain every flagged event instead of only the last")
	rootCmd.PersistentFlags().Bool("persist-records", false, "Write detection_results_<date>.json after a run")
	rootCmd.PersistentFlags().String("records-dir", ".", "Directory for persisted detection records")
	rootCmd.PersistentFlags().String("search-api-base", "", "Base URL of the web-search chat service (empty disables explanations)")
	rootCmd.PersistentFlags().String("search-api-key", "", "API key for the web-search chat service (please use env var)")
	rootCmd.PersistentFlags().String("search-model", "", "Model name for the web-search chat service")
	rootCmd.PersistentFlags().String("rephrase-api-base", "", "Base URL of the rephrasing chat service (defaults to search-api-base)")
	rootCmd.PersistentFlags().String("rephrase-api-key", "", "API key for the rephrasing chat service (please use env var)")
	rootCmd.PersistentFlags().String("rephrase-model", "", "Model name for the rephrasing chat service")
	rootCmd.PersistentFlags().Int("ai-timeout", 0, "Language service timeout in seconds (0 = default)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the explanation cache (empty disables caching)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password (please use env var)")
	rootCmd.PersistentFlags().Int("cache-ttl-hours", 0, "Explanation cache TTL in hours (0 = default)")
	rootCmd.PersistentFlags().String("bci-base-url", "", "Base URL of the BCI openapi service")
	rootCmd.PersistentFlags().String("bci-app-id", "", "BCI application id (please use env var)")
	rootCmd.PersistentFlags().String("bci-app-key", "", "BCI application key (please use env var)")
	rootCmd.PersistentFlags().String("bci-client", "", "BCI client identifier sent as a query parameter")
	rootCmd.PersistentFlags().String("http-addr", contract.DefaultHTTPAddr, "Listen address for the HTTP API server")
	rootCmd.PersistentFlags().String("log-level", "info", "Server log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeFetchCmd to Viper
	storeFetchCmd.Flags().String("fetch-start", "", "Start date for upstream fetch (default run-date minus lookback)")
	storeFetchCmd.Flags().String("fetch-end", "", "End date for upstream fetch (default run-date)")
	if err := viper.BindPFlags(storeFetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store fetch flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().Bool("series", false, "Export the windowed series rows instead of detection records")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}
}
