package training

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Runner executes an external command. Split out so tests can record
// invocations without a trainer installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	r.logger.Info("running trainer command", "cmd", name, "args", strings.Join(args, " "))
	return cmd.Run()
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner(logger *slog.Logger) Runner {
	return execRunner{logger: logger}
}

// Hyperparameters for a training run. The shipped defaults are tuned for the
// station safety dataset and are not meant to be overridden per run.
type Hyperparameters struct {
	Epochs    int
	Batch     int
	ImageSize int
	Mosaic    float64
	Mixup     float64
	LR0       float64
	LRF       float64
	Patience  int
	HSVHue    float64
	HSVSat    float64
	HSVVal    float64
	FlipLR    float64
	BoxGain   float64
}

// DefaultHyperparameters returns the fixed training configuration.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Epochs:    30,
		Batch:     16,
		ImageSize: 640,
		Mosaic:    0.7,
		Mixup:     0.2,
		LR0:       3e-4,
		LRF:       0.01,
		Patience:  10,
		HSVHue:    0.015,
		HSVSat:    0.7,
		HSVVal:    0.4,
		FlipLR:    0.5,
		BoxGain:   7.5,
	}
}

// Config holds the fixed paths of a pipeline run.
type Config struct {
	DatasetRoot  string
	ManifestPath string
	WeightsPath  string
	WeightsURL   string
	RunsDir      string
	PromotedPath string
	UseGPU       bool
}

// DefaultConfig returns the layout used by the shipped trainer.
func DefaultConfig() Config {
	return Config{
		DatasetRoot:  "dataset",
		ManifestPath: filepath.Join("dataset", "data.yaml"),
		WeightsPath:  filepath.Join("models", "yolov8m.pt"),
		RunsDir:      filepath.Join("runs", "detect"),
		PromotedPath: filepath.Join("models", "station_safety.onnx"),
	}
}

// Pipeline drives the external trainer end to end.
type Pipeline struct {
	cfg    Config
	hp     Hyperparameters
	runner Runner
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given config and runner.
func NewPipeline(cfg Config, hp Hyperparameters, runner Runner, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		hp:     hp,
		runner: runner,
		logger: logger,
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

// HasTrainingImages reports whether the train split contains at least one
// image file.
func (p *Pipeline) HasTrainingImages() (bool, error) {
	trainDir := filepath.Join(p.cfg.DatasetRoot, "images", "train")

	entries, err := os.ReadDir(trainDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read train images dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			return true, nil
		}
	}

	return false, nil
}

// LayoutDiagnostic describes the expected dataset layout. Printed when the
// no-images guard trips so the operator can see what is missing.
func (p *Pipeline) LayoutDiagnostic() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no training images found in %s\n", filepath.Join(p.cfg.DatasetRoot, "images", "train"))
	b.WriteString("expected dataset layout:\n")
	for _, dir := range datasetDirs {
		fmt.Fprintf(&b, "  %s/\n", filepath.Join(p.cfg.DatasetRoot, dir))
	}
	b.WriteString("place annotated images under images/train and YOLO label files under labels/train")
	return b.String()
}

// device returns the trainer device argument. GPU 0 when requested and
// CUDA_VISIBLE_DEVICES does not disable it, CPU otherwise.
func (p *Pipeline) device() string {
	if !p.cfg.UseGPU {
		return "cpu"
	}
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok && (v == "" || v == "-1") {
		return "cpu"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Train invokes the external trainer with the fixed hyperparameter set.
func (p *Pipeline) Train(ctx context.Context) error {
	args := []string{
		"detect", "train",
		"data=" + p.cfg.ManifestPath,
		"model=" + p.cfg.WeightsPath,
		"epochs=" + strconv.Itoa(p.hp.Epochs),
		"batch=" + strconv.Itoa(p.hp.Batch),
		"imgsz=" + strconv.Itoa(p.hp.ImageSize),
		"mosaic=" + formatFloat(p.hp.Mosaic),
		"mixup=" + formatFloat(p.hp.Mixup),
		"lr0=" + formatFloat(p.hp.LR0),
		"lrf=" + formatFloat(p.hp.LRF),
		"patience=" + strconv.Itoa(p.hp.Patience),
		"hsv_h=" + formatFloat(p.hp.HSVHue),
		"hsv_s=" + formatFloat(p.hp.HSVSat),
		"hsv_v=" + formatFloat(p.hp.HSVVal),
		"fliplr=" + formatFloat(p.hp.FlipLR),
		"box=" + formatFloat(p.hp.BoxGain),
		"device=" + p.device(),
	}

	if err := p.runner.Run(ctx, "yolo", args...); err != nil {
		return fmt.Errorf("trainer run: %w", err)
	}
	return nil
}

// newestRunWeights finds the best checkpoint of the most recent training run,
// or "" when no run produced one.
func (p *Pipeline) newestRunWeights() (string, error) {
	entries, err := os.ReadDir(p.cfg.RunsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read runs dir: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "train") {
			runs = append(runs, entry.Name())
		}
	}
	if len(runs) == 0 {
		return "", nil
	}

	// train, train2, train3, ... sort by the numeric suffix.
	sort.Slice(runs, func(i, j int) bool {
		return runSeq(runs[i]) < runSeq(runs[j])
	})

	best := filepath.Join(p.cfg.RunsDir, runs[len(runs)-1], "weights", "best.pt")
	if _, err := os.Stat(best); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat best checkpoint: %w", err)
	}
	return best, nil
}

func runSeq(name string) int {
	suffix := strings.TrimPrefix(name, "train")
	if suffix == "" {
		return 1
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}

// PromoteBest exports the newest best checkpoint to ONNX and copies it to the
// promoted path the detection engine loads. Returns the checkpoint that was
// promoted, or "" when no run produced one.
func (p *Pipeline) PromoteBest(ctx context.Context) (string, error) {
	best, err := p.newestRunWeights()
	if err != nil {
		return "", err
	}
	if best == "" {
		p.logger.Warn("no training run produced a best checkpoint, skipping promotion")
		return "", nil
	}

	args := []string{
		"export",
		"model=" + best,
		"format=onnx",
		"imgsz=" + strconv.Itoa(p.hp.ImageSize),
	}
	if err := p.runner.Run(ctx, "yolo", args...); err != nil {
		return "", fmt.Errorf("export checkpoint: %w", err)
	}

	exported := strings.TrimSuffix(best, filepath.Ext(best)) + ".onnx"
	if err := copyFile(exported, p.cfg.PromotedPath); err != nil {
		return "", fmt.Errorf("promote artifact: %w", err)
	}

	p.logger.Info("promoted trained artifact",
		"checkpoint", best,
		"promoted", p.cfg.PromotedPath,
	)
	return best, nil
}

// Validate runs the trainer's validation pass over the promoted artifact.
func (p *Pipeline) Validate(ctx context.Context) error {
	args := []string{
		"detect", "val",
		"model=" + p.cfg.PromotedPath,
		"data=" + p.cfg.ManifestPath,
		"imgsz=" + strconv.Itoa(p.hp.ImageSize),
		"device=" + p.device(),
	}
	if err := p.runner.Run(ctx, "yolo", args...); err != nil {
		return fmt.Errorf("validation run: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
