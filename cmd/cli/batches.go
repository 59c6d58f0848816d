package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	"github.com/kurihiro0119/hamster-timesheets/pkg/client"
)

var batchLimit int

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List previous submit runs",
	Args:  cobra.NoArgs,
	RunE:  runListBatches,
}

var batchShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one submit run and its entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowBatch,
}

func init() {
	batchesCmd.PersistentFlags().BoolVar(&remote, "remote", false, "read from the API server (API_ENDPOINT)")
	batchesCmd.Flags().IntVar(&batchLimit, "limit", 20, "number of batches to list")
	batchesCmd.AddCommand(batchShowCmd)
}

func runListBatches(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	var batches []*domain.SubmissionBatch
	if remote {
		batches, err = client.NewClient(cfg.APIEndpoint).ListBatches(batchLimit)
	} else {
		store, serr := getStorage(cfg)
		if serr != nil {
			return fmt.Errorf("failed to initialize storage: %w", serr)
		}
		defer store.Close()
		batches, err = store.ListBatches(context.Background(), batchLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	if outputJSON {
		return printJSON(batches)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Created", "Mode", "Status", "Window", "Entries", "Submitted"})
	for _, b := range batches {
		table.Append([]string{
			b.ID,
			b.CreatedAt.Local().Format("2006-01-02 15:04"),
			b.Mode,
			b.Status,
			formatWindow(domain.TimeRange{Start: b.StartDate, End: b.EndDate}),
			fmt.Sprintf("%d", b.EntryCount),
			fmt.Sprintf("%d", b.SubmittedCount),
		})
	}
	table.Render()
	return nil
}

func runShowBatch(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	var detail *client.BatchDetail
	if remote {
		detail, err = client.NewClient(cfg.APIEndpoint).GetBatch(id)
		if err != nil {
			return fmt.Errorf("failed to get batch: %w", err)
		}
	} else {
		store, err := getStorage(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		ctx := context.Background()
		batch, err := store.GetBatch(ctx, id)
		if err != nil {
			return err
		}
		subs, err := store.GetSubmissions(ctx, id)
		if err != nil {
			return err
		}
		detail = &client.BatchDetail{Batch: batch, Submissions: subs}
	}

	if outputJSON {
		return printJSON(detail)
	}

	b := detail.Batch
	fmt.Printf("\nBatch %s (%s, %s)\n", b.ID, b.Mode, b.Status)
	fmt.Printf("Window: %s\n", formatWindow(domain.TimeRange{Start: b.StartDate, End: b.EndDate}))
	fmt.Printf("Records: %d, entries: %d, submitted: %d\n", b.RecordCount, b.EntryCount, b.SubmittedCount)
	if b.Error != "" {
		fmt.Printf("Error: %s\n", b.Error)
	}
	fmt.Println()
	printSubmissions(detail.Submissions)
	return nil
}
