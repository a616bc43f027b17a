package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "backup <path>",
		Short: "Export vector memory to a file",
		Args:  cobra.ExactArgs(1),
		Run:   runBackup,
	}
	cmd.Flags().StringSlice("collection", nil, "Collections to export (default all)")
	cmd.Flags().String("encryption-key", "", "32-byte AES key for the export")
	cmd.Flags().Bool("compress", false, "Gzip the export")
	RootCmd.AddCommand(cmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	collections, _ := cmd.Flags().GetStringSlice("collection")
	key, _ := cmd.Flags().GetString("encryption-key")
	compress, _ := cmd.Flags().GetBool("compress")

	svc, err := buildService(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring service")
	}
	defer svc.close()

	if err := svc.memory.Export(args[0], compress, key, collections...); err != nil {
		log.Fatal().Err(err).Msg("Error exporting memory")
	}
	log.Info().Str("path", args[0]).Msg("Memory exported")
}
