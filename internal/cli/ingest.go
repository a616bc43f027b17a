package cli

import (
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"doc-gpt/internal/helper"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "ingest <url>",
		Short: "Download a document and store its chunks in vector memory",
		Args:  cobra.ExactArgs(1),
		Run:   runIngest,
	})
}

func runIngest(cmd *cobra.Command, args []string) {
	svc, err := buildService(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring service")
	}
	defer svc.close()

	// the pipeline takes the encoded form it would receive over HTTP
	res := svc.rag.Ingest(cmd.Context(), url.QueryEscape(args[0]))
	helper.PrettyPrint(res)
}
