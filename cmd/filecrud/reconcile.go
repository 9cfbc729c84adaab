package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare metadata records with stored blobs",
	Long: `Report blobs that have no metadata record (orphaned) and records whose
blob is missing (dangling). These appear when an upload or delete fails
halfway.

With --fix, orphaned blobs and dangling records are removed. Run it while
no uploads are in flight: a blob whose record has not been written yet
looks orphaned.

Exits non-zero when inconsistencies remain.`,
	RunE: runReconcile,
}

var (
	reconcileFix  bool
	reconcileJSON bool
)

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileFix, "fix", false, "remove orphaned blobs and dangling records")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	report, err := b.service.Reconcile(ctx, filecrud.ReconcileOptions{Fix: reconcileFix})
	if err != nil {
		// The report covers what was removed before the failure.
		_ = printReport(cmd.OutOrStdout(), report, reconcileJSON)
		return err
	}

	if err := printReport(cmd.OutOrStdout(), report, reconcileJSON); err != nil {
		return err
	}

	slog.Info("reconcile complete",
		"records", report.Records,
		"blobs", report.Blobs,
		"orphaned", len(report.OrphanedBlobs),
		"dangling", len(report.DanglingRecords),
		"removed", report.Removed,
	)

	if !report.Consistent() && !reconcileFix {
		return fmt.Errorf("found %d orphaned blob(s) and %d dangling record(s)", len(report.OrphanedBlobs), len(report.DanglingRecords))
	}
	return nil
}

func printReport(w io.Writer, report filecrud.ReconcileReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(w, "Records: %s\n", humanize.Comma(int64(report.Records)))
	_, _ = fmt.Fprintf(w, "Blobs:   %s\n", humanize.Comma(int64(report.Blobs)))

	for _, id := range report.OrphanedBlobs {
		_, _ = fmt.Fprintf(w, "orphaned blob:   %s\n", id)
	}
	for _, id := range report.DanglingRecords {
		_, _ = fmt.Fprintf(w, "dangling record: %s\n", id)
	}

	if report.Consistent() {
		_, _ = fmt.Fprintln(w, "No inconsistencies found")
	}
	if report.Removed > 0 {
		_, _ = fmt.Fprintf(w, "Removed: %d\n", report.Removed)
	}
	return nil
}
