package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	"github.com/kurihiro0119/hamster-timesheets/internal/submitter"
	"github.com/kurihiro0119/hamster-timesheets/pkg/client"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the timesheet entries that would be submitted",
	Long:  `Aggregate the window and print one line per merged entry without contacting GetMyTime.`,
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&fromJSON, "from-json", false, "read exported facts from stdin")
	previewCmd.Flags().BoolVar(&remote, "remote", false, "ask the API server (API_ENDPOINT) instead of reading locally")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	timeRange, err := getTimeRange()
	if err != nil {
		return err
	}

	var subs []domain.Submission
	if remote {
		subs, err = client.NewClient(cfg.APIEndpoint).Preview(timeRange.Start, timeRange.End)
		if err != nil {
			return fmt.Errorf("failed to get preview: %w", err)
		}
	} else {
		coll, release, err := getCollector(cfg)
		if err != nil {
			return err
		}
		defer release()

		result, err := submitter.New(coll, nil, nil, log).Preview(context.Background(), timeRange)
		if err != nil {
			return err
		}
		subs = result.Submissions
	}

	if outputJSON {
		return printJSON(subs)
	}

	fmt.Printf("\nTimesheet preview: %s\n\n", formatWindow(timeRange))
	printSubmissions(subs)
	return nil
}

func printSubmissions(subs []domain.Submission) {
	total := 0
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Start", "End", "Customer", "Activity", "Minutes", "Tags", "Comments"})
	for _, s := range subs {
		table.Append([]string{s.StartTime, s.EndTime, s.Customer, s.Activity, fmt.Sprintf("%d", s.Minutes), s.Tags, s.Comments})
		total += s.Minutes
	}
	table.SetFooter([]string{"", "", "", "Total", fmt.Sprintf("%d", total), "", ""})
	table.Render()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
