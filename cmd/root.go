package cmd

import (
	"fmt"
	"os"

	"company-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "company-manager",
	Short: "Company Manager Service",
	Long: `Company Manager keeps a reconciled, deduplicated copy of the HR portal's
company catalogue. It serves the catalogue over HTTP, stores it in a SQL
database and exports snapshots to S3-compatible storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// CLI errors use the console encoder with development timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
