package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/hamster-timesheets/internal/collector"
)

var exportCmd = &cobra.Command{
	Use:   "export [start] [end]",
	Short: "Export raw Hamster facts as JSON",
	Long: `Print finished Hamster facts in the window as a JSON array.

The output can be edited and fed back with "preview --from-json" or
"submit --from-json".`,
	Args: cobra.MaximumNArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		startDate = args[0]
	}
	if len(args) > 1 {
		endDate = args[1]
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	timeRange, err := getTimeRange()
	if err != nil {
		return err
	}

	coll, err := collector.NewHamsterCollector(cfg.HamsterDBPath, nil)
	if err != nil {
		return fmt.Errorf("failed to open hamster database: %w", err)
	}
	defer coll.Close()

	records, err := coll.CollectRecords(context.Background(), timeRange.Start, timeRange.End)
	if err != nil {
		return err
	}
	log.Debug("exported records", "records", len(records), "path", cfg.HamsterDBPath)

	return collector.EncodeJSON(os.Stdout, records)
}
