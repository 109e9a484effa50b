package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rishikoli/IRIS1-sub001/internal/compliance"
	"github.com/Rishikoli/IRIS1-sub001/internal/config"
	"github.com/Rishikoli/IRIS1-sub001/internal/httpapi"
	"github.com/Rishikoli/IRIS1-sub001/internal/ingest"
	"github.com/Rishikoli/IRIS1-sub001/internal/orchestrator"
	"github.com/Rishikoli/IRIS1-sub001/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Job API HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().String("rulepack", "", "path to a compliance rule pack YAML (optional)")
	cmd.Flags().String("ingest-url", "", "base URL of the ingest gateway (defaults to http://localhost:9000)")
	cmd.Flags().Int("port", 0, "HTTP port override (defaults to HTTP_PORT env or 8090)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	rulepackPath, _ := cmd.Flags().GetString("rulepack")
	ingestURL, _ := cmd.Flags().GetString("ingest-url")
	port, _ := cmd.Flags().GetInt("port")

	engineCfg := config.DefaultEngineConfig()
	if configPath != "" {
		loaded, err := config.LoadEngineConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitBadArguments)
		}
		engineCfg = loaded
	}

	var rulePack *compliance.RulePack
	if rulepackPath != "" {
		pack, err := compliance.LoadRulePack(rulepackPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitBadArguments)
		}
		rulePack = pack
	}

	ingestCfg := ingest.DefaultConfig()
	if ingestURL != "" {
		ingestCfg.BaseURL = ingestURL
	}

	metrics := telemetry.NewMetricsRegistry()

	orch := orchestrator.New(engineCfg, orchestrator.Deps{
		Ingest:   ingest.NewHTTPClient(ingestCfg),
		RulePack: rulePack,
		Metrics:  metrics,
	})

	serverCfg := httpapi.DefaultServerConfig()
	if port != 0 {
		serverCfg.Port = port
	}

	server, err := httpapi.NewServer(serverCfg, orch, metrics)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUpstreamFailed)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("job API server stopped")
			os.Exit(exitUpstreamFailed)
		}
	case <-sigCh:
		log.Info().Msg("shutting down job API server")
		ctx, cancel := context.WithTimeout(context.Background(), serverCfg.WriteTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
	return nil
}
