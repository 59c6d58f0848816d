package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/hamster-timesheets/internal/billing"
	"github.com/kurihiro0119/hamster-timesheets/internal/submitter"
	"github.com/kurihiro0119/hamster-timesheets/pkg/client"
)

var (
	dryRun   bool
	username string
	password string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the window to GetMyTime",
	Long: `Aggregate the window and create one GetMyTime time entry per merged entry.

Every entry is checked first: a blank comment or an unknown customer or task
aborts the run before anything is sent.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate against GetMyTime but do not create entries")
	submitCmd.Flags().BoolVar(&fromJSON, "from-json", false, "read exported facts from stdin")
	submitCmd.Flags().BoolVar(&remote, "remote", false, "let the API server (API_ENDPOINT) submit")
	submitCmd.Flags().StringVar(&username, "username", "", "GetMyTime username (overrides GETMYTIME_USERNAME)")
	submitCmd.Flags().StringVar(&password, "password", "", "GetMyTime password (overrides GETMYTIME_PASSWORD)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	timeRange, err := getTimeRange()
	if err != nil {
		return err
	}

	if remote {
		res, err := client.NewClient(cfg.APIEndpoint).Submit(timeRange.Start, timeRange.End, dryRun)
		if err != nil {
			return fmt.Errorf("failed to submit: %w", err)
		}
		fmt.Printf("Batch %s: %d of %d entries submitted\n", res.BatchID, res.Submitted, res.Entries)
		return nil
	}

	if username != "" {
		cfg.GetMyTimeUsername = username
	}
	if password != "" {
		cfg.GetMyTimePassword = password
	}
	if err := cfg.ValidateBilling(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	coll, release, err := getCollector(cfg)
	if err != nil {
		return err
	}
	defer release()

	sink, err := billing.NewClient(billing.Options{
		BaseURL:      cfg.GetMyTimeURL,
		Username:     cfg.GetMyTimeUsername,
		Password:     cfg.GetMyTimePassword,
		Token:        cfg.GetMyTimeToken,
		EmployeeID:   cfg.GetMyTimeEmployeeID,
		ProjectID:    cfg.GetMyTimeProjectID,
		RequestDelay: cfg.RequestDelay,
		Log:          log,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Submitting %s\n", formatWindow(timeRange))
	result, err := submitter.New(coll, sink, store, log).Run(context.Background(), timeRange, submitter.Options{DryRun: dryRun})
	if result != nil {
		for i, s := range result.Submissions[:result.Submitted] {
			fmt.Printf("  %2d. %s  %-20s %-20s %4d min\n", i+1, s.StartTime, s.Customer, s.Activity, s.Minutes)
		}
		fmt.Printf("Batch %s: %d of %d entries submitted\n", result.BatchID, result.Submitted, result.Entries)
	}
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println("Dry run, nothing was sent")
	} else {
		fmt.Println("Done")
	}
	return nil
}
