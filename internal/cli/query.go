package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"doc-gpt/internal/helper"
	"doc-gpt/internal/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "query <collection> <question>",
		Short: "Answer a question from retrieved memory",
		Args:  cobra.ExactArgs(2),
		Run:   runQuery,
	}
	cmd.Flags().IntP("limit", "l", 0, "Max memory records to retrieve (0 uses the service default)")
	cmd.Flags().Int("max-tokens", 0, "Completion token budget (0 uses the service default)")
	cmd.Flags().Float64("min-score", 0, "Minimum relevance score (0 uses the service default)")
	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	minScore, _ := cmd.Flags().GetFloat64("min-score")

	svc, err := buildService(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring service")
	}
	defer svc.close()

	completion, err := svc.rag.Query(cmd.Context(), models.QueryRequest{
		Collection:        args[0],
		Query:             args[1],
		MaxTokens:         maxTokens,
		Limit:             limit,
		MinRelevanceScore: minScore,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error running query")
	}
	helper.PrettyPrint(completion)
}
