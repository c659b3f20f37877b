package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/avlogix/flightscope/internal/config"
	"github.com/avlogix/flightscope/internal/metrics"
	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/persistence"
	"github.com/avlogix/flightscope/internal/persistence/cache"
	"github.com/avlogix/flightscope/internal/persistence/postgres"
	"github.com/avlogix/flightscope/internal/pipeline"
	"github.com/avlogix/flightscope/internal/report"
	"github.com/avlogix/flightscope/internal/telemetry/csvframe"
)

func newAnalyzeCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <log.csv>",
		Short: "Analyze one flight log",
		Long:  "Train the class models, analyze the given CSV flight log, and print the result with its report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(flagConfig)
			ctx := cmd.Context()

			frame, err := csvframe.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read flight log: %w", err)
			}

			registry := model.NewRegistry(cfg.Training)
			if _, err := registry.TrainAll(ctx); err != nil {
				return fmt.Errorf("train models: %w", err)
			}

			sink, closeSink, err := buildSink(cfg)
			if err != nil {
				return err
			}
			defer closeSink()

			analyzer := pipeline.NewAnalyzer(registry, cfg.Thresholds, cfg.Training.Seed)
			renderer := report.NewBreakerRenderer(nil,
				report.NewTemplateRenderer(cfg.Thresholds.DisplayEventCap))
			svc := pipeline.NewService(analyzer, sink, renderer, metrics.Default())

			analysis, err := svc.Run(ctx, frame)
			if err != nil {
				if pipeline.KindOf(err) != pipeline.KindSinkUnavailable {
					return err
				}
				log.Warn().Err(err).Msg("analysis completed but was not persisted")
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis.Outcome.Result)
			}

			fmt.Println(analysis.Report)
			if analysis.ReceiptID != "" {
				fmt.Printf("\nAnalysis ID: %s\n", analysis.ReceiptID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw result as JSON")
	return cmd
}

// buildSink assembles the persistence chain from configuration: Postgres
// when enabled, optionally fronted by the Redis cache, otherwise the
// in-memory store.
func buildSink(cfg config.Config) (persistence.Store, func(), error) {
	if !cfg.Database.Enabled {
		return persistence.NewMemoryStore(), func() {}, nil
	}

	pg, err := postgres.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open result sink: %w", err)
	}

	if !cfg.Redis.Enabled {
		return pg, func() { pg.Close() }, nil
	}

	cached := cache.New(pg, cfg.Redis)
	return cached, func() {
		cached.Close()
		pg.Close()
	}, nil
}
