package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"alertaja/internal/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	historyOutput string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Inspect the local SOS history",
	}
	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the SOS history, newest first",
		RunE:  runHistoryList,
	}
	historyExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the SOS history to an Excel workbook",
		RunE:  runHistoryExport,
	}
)

func init() {
	historyExportCmd.Flags().StringVarP(&historyOutput, "output", "o", "sos-history.xlsx", "output file")
	historyCmd.AddCommand(historyListCmd, historyExportCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		records := a.guard.History(ctx)
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No SOS records")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tLOCATION\tNOTIFIED\tCANCELLED")
		for _, r := range records {
			loc := "-"
			if r.HasLocation() {
				loc = fmt.Sprintf("%.5f,%.5f", *r.Latitude, *r.Longitude)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n",
				r.ID, r.Time().Format("2006-01-02 15:04:05"), loc, len(r.ContactsNotified), r.Cancelled)
		}
		return w.Flush()
	})
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		return exportHistory(ctx, cmd, a)
	})
}

func exportHistory(ctx context.Context, cmd *cobra.Command, a *app) error {
	records := a.guard.History(ctx)
	data, err := export.HistoryWorkbook(records, a.storage.Contacts(ctx), time.Local)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	if err := os.WriteFile(historyOutput, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", historyOutput, err)
	}

	a.logger.Info("SOS history exported",
		zap.String("file", historyOutput),
		zap.Int("records", len(records)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", len(records), historyOutput)
	return nil
}
