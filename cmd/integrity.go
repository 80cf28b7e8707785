package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"company-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the catalogue database and snapshot storage",
	Long:  `Checks the snapshot bucket layout, the catalogue schema and the consistency of the stored catalogue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), integrityChecks{structure: true, snapshots: true, schema: true, catalogue: true})
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the snapshot folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), integrityChecks{structure: true, fix: fixFlag})
	},
}

// snapshotsCmd represents the integrity snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Check that the latest snapshot was exported",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), integrityChecks{snapshots: true})
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the catalogue database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), integrityChecks{schema: true})
	},
}

// catalogueCmd represents the integrity catalogue command
var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Compare the stored catalogue with the latest reconciliation",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		return runIntegrityChecks(cmd.Context(), integrityChecks{catalogue: true, json: jsonOut})
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, snapshotsCmd, schemaCmd, catalogueCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing snapshot folder")
	catalogueCmd.Flags().Bool("json", false, "Print the detailed report as JSON")
}

type integrityChecks struct {
	structure bool
	snapshots bool
	schema    bool
	catalogue bool
	fix       bool
	json      bool
}

func runIntegrityChecks(ctx context.Context, run integrityChecks) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	db, _ := openRepository(ctx, cfg.Database, logg)
	store, _ := openStorage(ctx, cfg.Storage, logg)
	svc := integrity.NewService(store, cfg.Storage, db, logg)

	if run.structure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if run.fix {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run 'integrity structure --fix' to create missing folders.")
			}
		}
	}

	if run.snapshots {
		logg.Info("Checking snapshot files...")
		missing, err := svc.CheckSnapshots(ctx)
		if err != nil {
			return fmt.Errorf("snapshot check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Snapshot files are present.")
		} else {
			logg.Warn("Missing snapshot files detected", zap.Strings("missing", missing))
		}
	}

	if run.schema {
		logg.Info("Checking catalogue schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}

		if report.Matched {
			logg.Info("Schema matches expected definition.", zap.String("driver", report.Driver))
		} else {
			logg.Warn("Schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if run.catalogue {
		logg.Info("Checking stored catalogue...")
		report, err := svc.CheckCatalogue(ctx)
		if err != nil {
			return fmt.Errorf("catalogue check failed: %w", err)
		}

		if run.json {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		}

		if report.Matched {
			logg.Info("Catalogue matches the latest run.", zap.Int64("stored", report.Stored))
		} else {
			logg.Warn("Catalogue issues detected",
				zap.Int64("stored", report.Stored),
				zap.Strings("issues", report.Issues),
			)
		}
	}

	return nil
}
