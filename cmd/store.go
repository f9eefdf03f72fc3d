package cmd

import (
	"fmt"

	"github.com/jiayuqiu/sisi-mcp/internal/bciapi"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store maintenance.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("series-backend"))
	connStr := viper.GetString("series-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.SeriesBackend = backend
	cfg.SeriesDBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on series store management.
//
// Note: most store subcommands use minimal initialization (storeSetup)
// instead of the full sharedSetup used by detection commands. Fetch needs
// the run date and lookback window, so it runs the full setup.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the persisted ship-count series",
	Long: `Manage the ship_cnt_in_pipe series store that detection runs against.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  migrate - Apply schema migrations
  import  - Load series rows from a CSV file
  fetch   - Pull series rows from the BCI openapi service
  status  - Show row counts and connection info

Examples:
  # Check store status
  sisimcp store status

  # Seed the store from a CSV export
  sisimcp store import data/ship_cnt.csv`,
}

// storeMigrateCmd applies schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply series store schema migrations",
	Long: `Run embedded schema migrations against the configured backend.

By default migrates to the latest version. Use --target-version to move to a
specific version, or 0 to roll everything back.

Examples:
  # Migrate the default SQLite store to the latest version
  sisimcp store migrate

  # Migrate a PostgreSQL store (set connection string via env variable)
  SISIMCP_SERIES_BACKEND=postgresql SISIMCP_SERIES_DB_CONNECT="..." sisimcp store migrate

  # Roll back to the initial state
  sisimcp store migrate --target-version 0`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := seriesstore.Migrate(cfg.SeriesBackend, cfg.SeriesDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate series store", err)
		}
		fmt.Println("Series store migrated successfully.")
	},
}

// storeImportCmd seeds the store from a CSV file.
var storeImportCmd = &cobra.Command{
	Use:   "import [csv-path]",
	Short: "Load series rows from a CSV file",
	Long: `Read daily ship counts from a CSV file and upsert them into the store.

The file must carry a header with pipe_name, date_id and ship_cnt columns.
Existing rows for the same channel and date are replaced.

Examples:
  # Seed the default SQLite store
  sisimcp store import data/ship_cnt.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open series store", err)
		}
		defer func() { _ = store.Close() }()

		count, err := seriesstore.ImportCSV(rootCtx, store, args[0])
		if err != nil {
			contract.LogFatal("Failed to import CSV", err)
		}
		fmt.Printf("Imported %d rows from %s\n", count, args[0])
	},
}

// storeFetchCmd pulls series rows from the upstream BCI service.
var storeFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull series rows from the BCI openapi service",
	Long: `Fetch daily ship counts from the signed BCI openapi metrics endpoint and
upsert them into the store.

The fetch window defaults to the detection window: run-date minus the
configured lookback through run-date. Override either edge with
--fetch-start and --fetch-end. Credentials come from config or environment
(SISIMCP_BCI_APP_ID, SISIMCP_BCI_APP_KEY).

Examples:
  # Fetch the default window ending today
  sisimcp store fetch --bci-base-url https://bci.example.com --bci-client sisi

  # Fetch a fixed window
  sisimcp store fetch --fetch-start 2023-10-01 --fetch-end 2023-12-31`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		end := cfg.RunDate
		if s := viper.GetString("fetch-end"); s != "" {
			t, err := contract.ParseRunDate(s)
			if err != nil {
				contract.LogFatal("Invalid fetch end date", err)
			}
			end = t
		}
		start := schema.WindowStart(end, cfg.LookbackMonths, cfg.LookbackDays)
		if s := viper.GetString("fetch-start"); s != "" {
			t, err := contract.ParseRunDate(s)
			if err != nil {
				contract.LogFatal("Invalid fetch start date", err)
			}
			start = t
		}

		client := bciapi.New(cfg)
		rows, err := client.FetchWindow(rootCtx, start, end)
		if err != nil {
			contract.LogFatal("Failed to fetch upstream series", err)
		}

		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open series store", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.UpsertRows(rootCtx, rows); err != nil {
			contract.LogFatal("Failed to store fetched rows", err)
		}
		fmt.Printf("Fetched and stored %d rows (%s to %s)\n",
			len(rows), start.Format(contract.DateTimeFormat), end.Format(contract.DateTimeFormat))
	},
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display series store statistics and connection details",
	Long: `Show detailed information about the persisted ship-count series.

Displays:
- Backend type and connection status
- Total number of stored rows
- Channels with data and their date range
- Table size

Examples:
  # Check store status
  sisimcp store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open series store", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		seriesstore.PrintStatus(status)
	},
}
