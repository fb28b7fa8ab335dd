// Command score applies a persisted pipeline artifact to the ingested
// candidate view and writes one prediction per candidate, input order
// preserved. The artifact's embedded feature schema is validated against
// the candidate view before any prediction is made.
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"site-scout/internal/cfg"
	"site-scout/internal/features"
	"site-scout/internal/metrics"
	"site-scout/internal/ml"
	"site-scout/internal/report"
	"site-scout/internal/storage"
)

func main() {
	var (
		dataPath  = flag.String("data", "", "Data directory (overrides config)")
		modelPath = flag.String("model", "", "Artifact path (overrides config)")
		outDir    = flag.String("outdir", "", "Output directory (overrides config)")
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
	if *modelPath != "" {
		config.ModelPath = *modelPath
	}
	if *outDir != "" {
		config.OutDir = *outDir
	}

	pipe, err := ml.Load(config.ModelPath)
	if err != nil {
		log.Fatal().Err(err).Str("artifact", config.ModelPath).Msg("failed to load pipeline artifact")
	}

	store, err := storage.New(config.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	sites, err := store.CandidateSites()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load candidate view")
	}

	m := metrics.New()

	predictions, err := ml.Score(pipe, features.Names, sites)
	if err != nil {
		var contractErr *features.ContractError
		if errors.As(err, &contractErr) {
			m.ContractViolations.Inc()
		}
		// The textfile still goes out on failure; the violation counter
		// is useless if the aborting run never exports it.
		writeMetricsTextfile(m, config.OutDir)
		log.Fatal().Err(err).Msg("scoring failed")
	}

	reporter := report.NewReporter(config.OutDir)
	if err := reporter.WriteScoredCandidates(predictions); err != nil {
		log.Fatal().Err(err).Msg("failed to write predictions")
	}

	m.CandidatesScored.Set(float64(len(predictions)))
	writeMetricsTextfile(m, config.OutDir)
}

func writeMetricsTextfile(m *metrics.Metrics, outDir string) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("failed to create output directory for metrics")
		return
	}
	promPath := filepath.Join(outDir, "scoring_metrics.prom")
	if err := m.WriteTextfile(promPath); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics textfile")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
