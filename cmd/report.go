package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trustwatch/internal/adapters/sink"
	"trustwatch/internal/app"
	"trustwatch/internal/domain"
	mysqlrepo "trustwatch/internal/storage/mysql"
)

var reportCmd = &cobra.Command{
	Use:   "report <domain> <week>",
	Short: "Build one brand's weekly report",
	Long: `Builds the analytics report for a single brand and ISO week, e.g.

  trustwatch report ketogo.app 2026-W04

The report is written to the reports directory, or printed with --stdout.
A week with no stored reviews exits non-zero.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		week, err := domain.ParseWeek(args[1])
		if err != nil {
			return fmt.Errorf("invalid week %q: want a token like 2026-W04", args[1])
		}
		toStdout, _ := cmd.Flags().GetBool("stdout")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		reports := app.NewReportService(mysqlrepo.New(db), log.Logger)
		r, err := reports.BuildWeekly(ctx, args[0], week)
		if err != nil {
			return err
		}

		dir := cfg.ReportsDir
		if toStdout {
			dir = ""
		}
		return sink.NewJSON(dir, log.Logger).Publish(ctx, r)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("stdout", false, "Print the report instead of writing a file")
}
