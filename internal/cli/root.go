// Package cli implements the docgpt command tree.
package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "docgpt",
	Short: "Document memory and retrieval service",
	Long:  "docgpt ingests documents into vector memory and answers questions grounded on the retrieved chunks.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the yaml config file")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
