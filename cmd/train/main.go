package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/orbital-guard/sentinel/internal/config"
	"github.com/orbital-guard/sentinel/internal/registry"
	"github.com/orbital-guard/sentinel/internal/training"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	useGPU := flag.Bool("gpu", true, "train on GPU 0 when available")
	skipValidate := flag.Bool("skip-validate", false, "skip the validation pass after promotion")
	flag.Parse()

	_ = godotenv.Load()

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}
	logger := config.NewLogger(env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := training.DefaultConfig()
	cfg.UseGPU = *useGPU

	reg := registry.Default()

	// 1. Dataset manifest and directory tree
	manifest := training.NewManifest(cfg.DatasetRoot, canonicalByID(reg))
	if err := manifest.Write(cfg.ManifestPath); err != nil {
		return err
	}
	logger.Info("dataset manifest ready", slog.String("path", cfg.ManifestPath))

	// 2. Baseline weights
	downloaded, err := training.DownloadWeights(cfg.WeightsURL, cfg.WeightsPath)
	if err != nil {
		return fmt.Errorf("%w\ncheck network access and free disk space before retrying", err)
	}
	if downloaded {
		logger.Info("downloaded baseline weights", slog.String("path", cfg.WeightsPath))
	} else {
		logger.Info("baseline weights already present", slog.String("path", cfg.WeightsPath))
	}

	pipeline := training.NewPipeline(cfg, training.DefaultHyperparameters(), training.NewExecRunner(logger), logger)

	// 3. Guard against an empty train split
	hasImages, err := pipeline.HasTrainingImages()
	if err != nil {
		return err
	}
	if !hasImages {
		fmt.Fprintln(os.Stderr, pipeline.LayoutDiagnostic())
		return fmt.Errorf("dataset has no training images")
	}

	// 4. Train
	logger.Info("starting training run")
	if err := pipeline.Train(ctx); err != nil {
		return fmt.Errorf("%w\ncommon causes: yolo CLI not installed, GPU driver mismatch, labels not in YOLO txt format, disk full", err)
	}

	// 5. Promote the best artifact
	best, err := pipeline.PromoteBest(ctx)
	if err != nil {
		return fmt.Errorf("%w\nthe previously promoted model, if any, is untouched", err)
	}
	if best == "" {
		return fmt.Errorf("training finished but produced no checkpoint under %s", cfg.RunsDir)
	}

	// 6. Validate
	if *skipValidate {
		logger.Info("validation skipped")
		return nil
	}
	if err := pipeline.Validate(ctx); err != nil {
		return fmt.Errorf("%w\nthe promoted model is in place but unvalidated", err)
	}

	logger.Info("training pipeline complete", slog.String("model", cfg.PromotedPath))
	return nil
}

// canonicalByID maps class ids to canonical names for the manifest.
func canonicalByID(reg *registry.Registry) map[int]string {
	out := make(map[int]string, reg.TotalClasses())
	for _, name := range reg.CanonicalNames() {
		if id, ok := reg.ID(name); ok {
			out[id] = name
		}
	}
	return out
}
