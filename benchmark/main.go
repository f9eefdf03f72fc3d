// Package main provides a performance benchmarking tool for the sisimcp CLI.
// It measures detection times across different window sizes and segmentation
// methods, running each test multiple times, treating the first run as cold
// and averaging the rest as warm, generating CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - sisimcp binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the temporary series store and seed files
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	WindowDays int
	Method     string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Runs        int
	WindowSizes []int
	Methods     []string
	PipeName    string
	RunDate     string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     2 * time.Minute,
		Runs:        4,
		WindowSizes: []int{90, 365, 1095},
		Methods:     []string{"bic", "pelt", "binseg", "bottomup", "window"},
		PipeName:    "曼德海峡",
		RunDate:     "2023-12-31",
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the sisimcp binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("sisimcp"); err != nil {
		return fmt.Errorf("sisimcp binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks seeds one store per window size and times detection across methods
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d window sizes, %d methods, %v timeout, %d runs each\n",
		len(config.WindowSizes), len(config.Methods), config.Timeout, config.Runs)

	for _, days := range config.WindowSizes {
		fmt.Printf("Benchmarking %d-day window\n", days)

		dbPath, err := seedStore(config, days)
		if err != nil {
			return nil, fmt.Errorf("failed to seed %d-day store: %w", days, err)
		}

		for _, method := range config.Methods {
			result, err := runBenchmarkSuite(config, dbPath, days, method)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// seedStore writes a synthetic series CSV and imports it into a fresh SQLite store
func seedStore(config BenchmarkConfig, days int) (string, error) {
	dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("series_%d.db", days))
	_ = os.Remove(dbPath)

	csvPath := filepath.Join(config.WorkDir, fmt.Sprintf("seed_%d.csv", days))
	if err := writeSyntheticCSV(csvPath, config.PipeName, days); err != nil {
		return "", err
	}

	importCmd := exec.Command("sisimcp", "store", "import", csvPath,
		"--series-backend", "sqlite", "--series-db-connect", dbPath)
	if output, err := importCmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("import failed: %w\nOutput: %s", err, string(output))
	}
	return dbPath, nil
}

// writeSyntheticCSV generates a noisy series with a few step changes, ending at 2023-12-31
func writeSyntheticCSV(path, pipeName string, days int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, "pipe_name,date_id,ship_cnt"); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(42))
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	level := 50.0
	for i := 0; i < days; i++ {
		// Shift the regime every ~60 days
		if i > 0 && i%60 == 0 {
			level += math.Floor(rng.Float64()*40) - 20
		}
		cnt := level + rng.NormFloat64()*3
		day := end.AddDate(0, 0, i-days+1)
		dateID := day.Year()*10000 + int(day.Month())*100 + day.Day()
		if _, err := fmt.Fprintf(f, "%s,%d,%.2f\n", pipeName, dateID, cnt); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarkSuite times the detect command for one window size and method
func runBenchmarkSuite(config BenchmarkConfig, dbPath string, days int, method string) (BenchmarkResult, error) {
	fmt.Printf("Running %s detection on %d-day window\n", method, days)

	var coldTime float64
	var warmTimes []float64

	for run := 0; run < config.Runs; run++ {
		elapsed, err := runDetect(config, dbPath, method, days)
		if err != nil {
			return BenchmarkResult{}, err
		}
		if run == 0 {
			coldTime = elapsed
		} else {
			warmTimes = append(warmTimes, elapsed)
		}
	}

	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}
	coldStr := fmt.Sprintf("%.3fs", coldTime)

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmAvg)

	return BenchmarkResult{
		WindowDays: days,
		Method:     method,
		ColdTime:   coldStr,
		WarmTime:   warmAvg,
	}, nil
}

// runDetect executes one timed detect invocation
func runDetect(config BenchmarkConfig, dbPath, method string, lookbackDays int) (float64, error) {
	cmd := exec.Command("sisimcp", "detect",
		"--pipe", config.PipeName,
		"--run-date", config.RunDate,
		"--method", method,
		"--lookback-months", "0",
		"--lookback-days", fmt.Sprintf("%d", lookbackDays),
		"--series-backend", "sqlite",
		"--series-db-connect", dbPath)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return 0, fmt.Errorf("detect failed: %w", err)
		}
		return time.Since(start).Seconds(), nil
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		return 0, fmt.Errorf("detect timed out after %v", config.Timeout)
	}
}

// saveResults writes benchmark results to a CSV file
func saveResults(results []BenchmarkResult) error {
	f, err := os.Create("benchmark_results.csv")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"window_days", "method", "cold_time", "warm_time"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{fmt.Sprintf("%d", r.WindowDays), r.Method, r.ColdTime, r.WarmTime}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// printSummary prints a human-readable summary of all results
func printSummary(results []BenchmarkResult) {
	fmt.Println("\nBenchmark summary:")
	for _, r := range results {
		fmt.Printf("  %4d days  %-8s  cold %s  warm %s\n", r.WindowDays, r.Method, r.ColdTime, r.WarmTime)
	}
	fmt.Println("Results written to benchmark_results.csv")
}
