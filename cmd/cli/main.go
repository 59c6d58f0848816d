package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/hamster-timesheets/internal/collector"
	"github.com/kurihiro0119/hamster-timesheets/internal/config"
	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/postgres"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/sqlite"
	"github.com/kurihiro0119/hamster-timesheets/internal/timecalc"
)

var (
	cfgFile    string
	outputJSON bool
	startDate  string
	endDate    string
	fromJSON   bool
	remote     bool
)

var rootCmd = &cobra.Command{
	Use:   "timesheets",
	Short: "Hamster to GetMyTime timesheet bridge",
	Long: `A CLI tool that turns Hamster time tracking facts into GetMyTime timesheet entries.

Facts are grouped per day, customer and activity, merged into one entry per
group and rounded to 15 minute billing increments before submission.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "", "window start (YYYY-MM-DD or RFC3339, default yesterday)")
	rootCmd.PersistentFlags().StringVar(&endDate, "end", "", "window end, exclusive (YYYY-MM-DD or RFC3339, default tomorrow)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(batchesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

// getTimeRange reads --start/--end. Records piped in with --from-json are not
// filtered unless a bound was given.
func getTimeRange() (domain.TimeRange, error) {
	if fromJSON && startDate == "" && endDate == "" {
		return domain.TimeRange{}, nil
	}
	return timecalc.ParseWindow(startDate, endDate, time.Now())
}

// getCollector returns the record source and a func that releases it.
func getCollector(cfg *config.Config) (collector.Collector, func(), error) {
	if fromJSON {
		c, err := collector.NewJSONCollector(os.Stdin, time.Local)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}

	c, err := collector.NewHamsterCollector(cfg.HamsterDBPath, time.Local)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func formatWindow(tr domain.TimeRange) string {
	if tr.Start.IsZero() && tr.End.IsZero() {
		return "all records"
	}
	return fmt.Sprintf("%s to %s", tr.Start.Format("2006-01-02 15:04"), tr.End.Format("2006-01-02 15:04"))
}
