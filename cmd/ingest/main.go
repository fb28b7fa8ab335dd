// Command ingest loads location CSVs into the durable store. Sources may be
// local files or HTTP(S) URLs. A file missing any required column is
// rejected with the full sorted list of missing names, and the target view
// is left untouched.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"site-scout/internal/cfg"
	"site-scout/internal/metrics"
	"site-scout/internal/storage"
)

func main() {
	var (
		trainSrc      = flag.String("train", "", "Training CSV: path or URL (locations_train)")
		candidatesSrc = flag.String("candidates", "", "Candidate CSV: path or URL (locations_candidates)")
		dataPath      = flag.String("data", "", "Data directory (overrides config)")
		logLevel      = flag.String("log-level", "info", "Log level: debug, info, warn, error")
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

	if *trainSrc == "" && *candidatesSrc == "" {
		log.Fatal().Msg("nothing to ingest: pass -train and/or -candidates")
	}

	if err := os.MkdirAll(config.DataPath, 0o755); err != nil {
		log.Fatal().Err(err).Str("data_path", config.DataPath).Msg("failed to create data directory")
	}

	store, err := storage.New(config.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	m := metrics.New()

	if *trainSrc != "" {
		n := ingestTraining(store, &config, *trainSrc)
		m.TrainingRowsIngested.Set(float64(n))
	}
	if *candidatesSrc != "" {
		n := ingestCandidates(store, &config, *candidatesSrc)
		m.CandidateRowsIngested.Set(float64(n))
	}

	promPath := filepath.Join(config.DataPath, "ingest_metrics.prom")
	if err := m.WriteTextfile(promPath); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics textfile")
	}
}

func ingestTraining(store *storage.Store, config *cfg.Settings, source string) int {
	src, err := storage.OpenSource(source, config.FetchTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("failed to open training source")
	}
	defer src.Close()

	sites, err := storage.ReadTrainingCSV(src)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("training CSV rejected")
	}
	if err := store.ReplaceTrainingSites(sites); err != nil {
		log.Fatal().Err(err).Msg("failed to store training sites")
	}

	log.Info().Int("rows", len(sites)).Str("source", source).Msg("training view ingested")
	return len(sites)
}

func ingestCandidates(store *storage.Store, config *cfg.Settings, source string) int {
	src, err := storage.OpenSource(source, config.FetchTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("failed to open candidate source")
	}
	defer src.Close()

	sites, err := storage.ReadCandidateCSV(src)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("candidate CSV rejected")
	}
	if err := store.ReplaceCandidateSites(sites); err != nil {
		log.Fatal().Err(err).Msg("failed to store candidate sites")
	}

	log.Info().Int("rows", len(sites)).Str("source", source).Msg("candidate view ingested")
	return len(sites)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
