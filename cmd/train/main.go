// Command train fits the profit regression pipeline on the ingested
// training view and writes metrics, diagnostics, and the fitted artifact.
// Identical input, seed, and split ratio reproduce identical outputs.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"site-scout/internal/cfg"
	"site-scout/internal/metrics"
	"site-scout/internal/ml"
	"site-scout/internal/report"
	"site-scout/internal/storage"
)

func main() {
	var (
		dataPath  = flag.String("data", "", "Data directory (overrides config)")
		outDir    = flag.String("outdir", "", "Output directory (overrides config)")
		modelPath = flag.String("model", "", "Artifact path (overrides config)")
		seed      = flag.Int64("seed", -1, "Split seed (overrides config)")
		logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	_ = godotenv.Load()
	setupLogging(*logLevel)

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *dataPath != "" {
		config.DataPath = *dataPath
	}
	if *outDir != "" {
		config.OutDir = *outDir
		config.ModelPath = filepath.Join(*outDir, "model.json")
	}
	if *modelPath != "" {
		config.ModelPath = *modelPath
	}
	if *seed >= 0 {
		config.Seed = *seed
	}

	store, err := storage.New(config.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	sites, err := store.TrainingSites()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load training view")
	}

	trainer := ml.Trainer{
		Seed:     config.Seed,
		TestSize: config.TestSize,
		Alpha:    config.Alpha,
		L1Ratio:  config.L1Ratio,
	}

	start := time.Now()
	result, err := trainer.Train(sites)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	elapsed := time.Since(start)

	reporter := report.NewReporter(config.OutDir)
	if err := reporter.WriteTrainingOutputs(result); err != nil {
		log.Fatal().Err(err).Msg("failed to write training outputs")
	}

	if err := result.Pipeline.Save(config.ModelPath); err != nil {
		log.Fatal().Err(err).Msg("failed to persist pipeline artifact")
	}

	m := metrics.New()
	m.TrainingDuration.Set(elapsed.Seconds())
	m.EvalR2.Set(result.Metrics.R2)
	m.EvalMAE.Set(result.Metrics.MAE)
	promPath := filepath.Join(config.OutDir, "pipeline_metrics.prom")
	if err := m.WriteTextfile(promPath); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics textfile")
	}

	log.Info().
		Str("artifact", config.ModelPath).
		Str("outdir", config.OutDir).
		Dur("elapsed", elapsed).
		Msg("training run persisted")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
