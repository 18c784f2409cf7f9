package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trustwatch/internal/adapters/observability"
	"trustwatch/internal/shared"
)

var cfg shared.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trustwatch",
	Short: "Review ingestion and weekly brand analytics.",
	Long: `trustwatch keeps a local mirror of each roster brand's public reviews and
derives weekly analytics reports (volume, ratings, sentiment, response
performance, themes) from the mirror.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initRuntime)
}

// initRuntime loads configuration and installs the global logger before any
// subcommand body runs.
func initRuntime() {
	cfg = shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
}
