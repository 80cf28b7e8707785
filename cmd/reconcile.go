package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"company-manager/core/reconcile"
	"company-manager/feature/companies"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile companies command
	jsonOutput    bool
	persistResult bool
	exportResult  bool
	pageSize      int
	bulkLimit     int
	maxCodeProbes int
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile data loaded from the HR portal",
}

// companiesReconcileCmd loads the full company catalogue from the portal.
var companiesReconcileCmd = &cobra.Command{
	Use:   "companies",
	Short: "Load the complete company catalogue from the portal",
	Long: `Loads every company the portal's listing will yield, escalating from a
single bulk request to a paged sweep, a probe of missing codes and a keyword
search until the declared total is reached.

Examples:
  # Report only
  reconcile companies

  # Print the catalogue as JSON
  reconcile companies --json > companies.json

  # Store the result in the database and export a snapshot
  reconcile companies --persist --export`,
	RunE: runCompaniesReconcile,
}

func init() {
	reconcileCmd.AddCommand(companiesReconcileCmd)

	companiesReconcileCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the reconciled catalogue as JSON on stdout")
	companiesReconcileCmd.Flags().BoolVar(&persistResult, "persist", false, "Store the result in the catalogue database")
	companiesReconcileCmd.Flags().BoolVar(&exportResult, "export", false, "Export a snapshot to object storage")
	companiesReconcileCmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size of the paged sweep (default from config)")
	companiesReconcileCmd.Flags().IntVar(&bulkLimit, "bulk-limit", 0, "Limit of the bulk request (default from config)")
	companiesReconcileCmd.Flags().IntVar(&maxCodeProbes, "max-code-probes", 0, "Cap on search-by-code requests (default from config)")

	RootCmd.AddCommand(reconcileCmd)
}

func runCompaniesReconcile(cmd *cobra.Command, args []string) error {
	// Interrupting ends the run with whatever was gathered.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	opts := cfg.Reconcile
	if pageSize > 0 {
		opts.PageSize = pageSize
	}
	if bulkLimit > 0 {
		opts.BulkLimit = bulkLimit
	}
	if maxCodeProbes > 0 {
		opts.MaxCodeProbes = maxCodeProbes
	}

	portal, err := newPortal(cfg.Backend, l)
	if err != nil {
		return err
	}
	if err := portal.EnsureSession(ctx); err != nil {
		return fmt.Errorf("failed to log in to portal: %w", err)
	}

	l.Info("Starting company reconciliation", zap.String("portal", cfg.Backend.BaseURL))
	sink := func(p reconcile.Progress) {
		l.Debug(p.Message, zap.Stringer("phase", p.Phase))
	}
	result := reconcile.Load(ctx, portal, opts, sink, l)

	printCompaniesReport(l, result)

	// Sinks run to completion even after an interrupt.
	sinkCtx := context.WithoutCancel(ctx)
	if persistResult {
		_, repo := openRepository(sinkCtx, cfg.Database, l)
		if repo == nil {
			return fmt.Errorf("catalogue database is unavailable")
		}
		snap, err := repo.Save(sinkCtx, result)
		if err != nil {
			return err
		}
		l.Info("Catalogue stored", zap.Uint("snapshot_id", snap.ID), zap.String("status", snap.Status))
	}

	if exportResult {
		if result.Status() == reconcile.StatusFailed {
			l.Warn("Skipping export of a failed run")
		} else {
			_, exporter := openStorage(sinkCtx, cfg.Storage, l)
			if exporter == nil {
				return fmt.Errorf("snapshot storage is unavailable")
			}
			key, err := exporter.Export(sinkCtx, result)
			if err != nil {
				return err
			}
			l.Info("Snapshot exported", zap.String("key", key))
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(companies.ExportDocument{
			Status:  result.Status(),
			Message: result.Message(),
			Result:  result,
		})
	}
	return nil
}

// printCompaniesReport prints a formatted reconciliation report using logger.
func printCompaniesReport(l *zap.Logger, result *reconcile.Result) {
	l.Info("Reconciliation report",
		zap.String("status", string(result.Status())),
		zap.String("message", result.Message()),
		zap.Int("loaded", result.Loaded),
		zap.Int("expected", result.Expected),
		zap.Int("requests", result.Requests),
		zap.Int("failures", result.Failures),
		zap.Duration("duration", result.Duration),
	)

	for _, phase := range result.Phases {
		l.Info("Phase",
			zap.String("phase", phase.Name),
			zap.Int("requests", phase.Requests),
			zap.Int("added", phase.Added),
			zap.Int("failures", phase.Failures),
		)
	}

	// Show sample of companies (max 5 for logger)
	maxShow := min(5, len(result.Companies))
	for _, c := range result.Companies[:maxShow] {
		l.Info("Sample company", zap.Int64("code", c.Code), zap.String("name", c.ShortName))
	}
	if len(result.Companies) > maxShow {
		l.Info("Additional companies not shown", zap.Int("count", len(result.Companies)-maxShow))
	}
}
