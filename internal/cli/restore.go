package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Import vector memory from an exported file",
		Args:  cobra.ExactArgs(1),
		Run:   runRestore,
	}
	cmd.Flags().StringSlice("collection", nil, "Collections to import (default all)")
	cmd.Flags().String("encryption-key", "", "32-byte AES key the export was written with")
	RootCmd.AddCommand(cmd)
}

func runRestore(cmd *cobra.Command, args []string) {
	collections, _ := cmd.Flags().GetStringSlice("collection")
	key, _ := cmd.Flags().GetString("encryption-key")

	svc, err := buildService(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring service")
	}
	defer svc.close()

	if err := svc.memory.Import(args[0], key, collections...); err != nil {
		log.Fatal().Err(err).Msg("Error importing memory")
	}
	log.Info().Str("path", args[0]).Msg("Memory imported")
}
