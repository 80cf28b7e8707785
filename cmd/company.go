package cmd

import (
	"context"
	"fmt"

	"company-manager/core/backend"
	"company-manager/core/reconcile"
	"company-manager/feature/companies"
	"company-manager/feature/settings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// companyCmd manages the active company of the portal session.
var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or change the active company of the portal session",
	Long: `The portal keeps the active company in the selected_company cookie.
Select prints the cookie value; set BACKEND_SELECTED_COMPANY to reuse it
in later commands.`,
}

var companyCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(cmd.Context(), func(ctx context.Context, svc *settings.Service, _ *backend.Client, l *zap.Logger) error {
			company, err := svc.Current(ctx)
			if err != nil {
				return err
			}
			if company == nil {
				l.Info("No company selected")
				return nil
			}
			logCompany(l, "Active company", company)
			return nil
		})
	},
}

var companySelectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Select the active company by portal id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(cmd.Context(), func(ctx context.Context, svc *settings.Service, portal *backend.Client, l *zap.Logger) error {
			company, err := svc.Select(ctx, args[0])
			if err != nil {
				return err
			}
			logCompany(l, "Company selected", company)
			l.Info("Selection cookie", zap.String("selected_company", portal.SelectedCompanyID()))
			return nil
		})
	},
}

var companyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the active company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(cmd.Context(), func(ctx context.Context, svc *settings.Service, _ *backend.Client, l *zap.Logger) error {
			if err := svc.Clear(ctx); err != nil {
				return err
			}
			l.Info("Company selection cleared")
			return nil
		})
	},
}

var companyAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Select the first company by name when none is active",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(cmd.Context(), func(ctx context.Context, svc *settings.Service, portal *backend.Client, l *zap.Logger) error {
			company, selected, err := svc.AutoSelect(ctx)
			if err != nil {
				return err
			}
			switch {
			case company == nil:
				l.Warn("No companies available")
			case selected:
				logCompany(l, "Company selected", company)
				l.Info("Selection cookie", zap.String("selected_company", portal.SelectedCompanyID()))
			default:
				logCompany(l, "Company already active", company)
			}
			return nil
		})
	},
}

func init() {
	companyCmd.AddCommand(companyCurrentCmd, companySelectCmd, companyClearCmd, companyAutoCmd)
	RootCmd.AddCommand(companyCmd)
}

// withSettings wires a logged-in portal client and the settings service
// for one command.
func withSettings(ctx context.Context, run func(context.Context, *settings.Service, *backend.Client, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	portal, err := newPortal(cfg.Backend, l)
	if err != nil {
		return err
	}
	if err := portal.EnsureSession(ctx); err != nil {
		return fmt.Errorf("failed to log in to portal: %w", err)
	}

	// The catalogue is read from the database when one is configured.
	_, repo := openRepository(ctx, cfg.Database, l)
	catalogue := companies.NewService(portal, cfg.Reconcile, repo, nil, nil, l)
	return run(ctx, settings.NewService(portal, catalogue, l), portal, l)
}

func logCompany(l *zap.Logger, msg string, c *reconcile.Company) {
	l.Info(msg,
		zap.String("id", c.ID),
		zap.Int64("code", c.Code),
		zap.String("name", c.ShortName),
		zap.String("legal_name", c.LegalName),
	)
}
