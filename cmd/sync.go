package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trustwatch/internal/domain"
	"trustwatch/internal/shared"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the roster's reviews into the local mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		brandFlag, _ := cmd.Flags().GetString("brand")
		withReports, _ := cmd.Flags().GetBool("reports")
		weeks, _ := cmd.Flags().GetInt("weeks")

		syncMode := domain.SyncMode(mode)
		switch syncMode {
		case domain.SyncAuto, domain.SyncFull, domain.SyncIncremental:
		default:
			return fmt.Errorf("invalid --mode %q (want auto, full or incremental)", mode)
		}

		brands, err := resolveRoster(brandFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		run := buildRunner(db)
		var sum domain.RunSummary
		if withReports {
			if weeks <= 0 {
				weeks = cfg.ReportWeeks
			}
			sum = run.RunFull(ctx, brands, syncMode, weeks)
		} else {
			sum = run.RunSync(ctx, brands, syncMode)
		}
		if len(sum.Failed) > 0 {
			return fmt.Errorf("run %s: %d item(s) failed", sum.RunID, len(sum.Failed))
		}
		return nil
	},
}

// resolveRoster narrows the configured roster to one brand when asked. A
// domain outside the roster is still accepted, named after itself.
func resolveRoster(brandFlag string) ([]domain.BrandRef, error) {
	brands, err := shared.LoadBrands()
	if brandFlag == "" {
		return brands, err
	}
	if err == nil {
		for _, b := range brands {
			if b.Domain == brandFlag {
				return []domain.BrandRef{b}, nil
			}
		}
	}
	return []domain.BrandRef{{Domain: brandFlag, Name: brandFlag}}, nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("mode", "auto", "Sync mode: auto, full or incremental")
	syncCmd.Flags().String("brand", "", "Sync a single brand by domain")
	syncCmd.Flags().Bool("reports", false, "Publish weekly reports after syncing")
	syncCmd.Flags().Int("weeks", 0, "Trailing weeks to report with --reports (default from config)")
}
