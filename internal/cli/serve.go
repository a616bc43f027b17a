package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"doc-gpt/internal/fetch"
	"doc-gpt/internal/server"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		Run:   runServe,
	})
}

func runServe(cmd *cobra.Command, args []string) {
	svc, err := buildService(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring service")
	}
	defer svc.close()

	scheduler, err := fetch.StartSweeper(
		svc.cfg.Scratch.Dir,
		time.Duration(svc.cfg.Scratch.MaxAgeMinutes)*time.Minute,
		time.Duration(svc.cfg.Scratch.SweepMinutes)*time.Minute,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Error starting scratch sweeper")
	}

	app := server.New(svc.cfg, &server.Handlers{
		RAG:             svc.rag,
		Memory:          svc.memory,
		Docs:            svc.docs,
		StoreTimeout:    time.Duration(svc.cfg.Server.StoreTimeoutSecs) * time.Second,
		PipelineTimeout: time.Duration(svc.cfg.Server.PipelineTimeoutSec) * time.Second,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down")
		if err := scheduler.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("Error stopping scratch sweeper")
		}
		if err := app.ShutdownWithTimeout(time.Duration(svc.cfg.Server.ShutdownSeconds) * time.Second); err != nil {
			log.Warn().Err(err).Msg("Error shutting down server")
		}
	}()

	if err := app.Listen(svc.cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
}
