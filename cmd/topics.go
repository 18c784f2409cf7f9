package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trustwatch/internal/app"
	mysqlrepo "trustwatch/internal/storage/mysql"
)

var topicsCmd = &cobra.Command{
	Use:   "topics <file>",
	Short: "Replace the topic dictionary from a JSON file",
	Long: `Loads a topic dictionary and replaces the stored set. The file is a flat
JSON object of key to display name:

  {"customer_service": "Customer Service", "delivery": "Delivery"}

Search terms (spaced key, display name, plural/singular twin) are derived
on import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		imp := app.NewTopicImporter(mysqlrepo.New(db), log.Logger)
		n, err := imp.ImportFile(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d topics\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
