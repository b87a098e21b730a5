package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
	"github.com/Brownie44l1/image-classifier/internal/config"
	"github.com/Brownie44l1/image-classifier/internal/logger"
	"github.com/Brownie44l1/image-classifier/internal/model"
)

// Version is the application version.
const Version = "0.1.0"

type options struct {
	ConfigPath string
	ModelName  string
	ModelDir   string
	TopK       int
	Jobs       int
}

var opts options

var rootCmd = &cobra.Command{
	Use:     "classify [flags] IMAGE...",
	Short:   "Classify still images with a pretrained network",
	Version: Version,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify(cmd.Context(), args, opts)
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&opts.ModelName, "model", "", "model to use (default from config: mobilenet)")
	rootCmd.Flags().StringVar(&opts.ModelDir, "model-dir", "", "directory holding the .onnx and .json model files")
	rootCmd.Flags().IntVarP(&opts.TopK, "topk", "k", 0, "number of classes to report per image (default per model)")
	rootCmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 2, "number of images classified concurrently")
}

type fileResult struct {
	path  string
	preds []classifier.Prediction
	err   error
}

func runClassify(ctx context.Context, paths []string, o options) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.ModelName != "" {
		cfg.Model.Name = o.ModelName
	}
	if o.ModelDir != "" {
		cfg.Model.Dir = o.ModelDir
	}
	if o.TopK != 0 {
		cfg.Model.TopK = o.TopK
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}

	// Progress goes to stderr, so keep logs there too and quiet by default.
	cfg.Log.Format = "console"
	cfg.Log.Output = "stderr"
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	name, err := classifier.ParseModelName(cfg.Model.Name)
	if err != nil {
		return err
	}
	loader := model.NewLoader(name, cfg.Model.Dir, cfg.Model.SharedLibraryPath, log)
	defer loader.Close()

	factory := classifier.NewFactory(classifier.Registry{name: loader}, log)
	pending, err := factory.New(cfg.Model.Name, cfg.Model.Options())
	if err != nil {
		return err
	}
	session, err := pending.Await(ctx)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Classifying"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	tasks := make(chan int)
	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < o.Jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				preds, err := classifyFile(ctx, session, paths[i])
				results[i] = fileResult{path: paths[i], preds: preds, err: err}
				_ = bar.Add(1)
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	failed := 0
	for _, r := range results {
		if r.path == "" {
			continue
		}
		if r.err != nil {
			failed++
			log.Warn("Failed to classify", zap.String("path", r.path), zap.Error(r.err))
			fmt.Printf("%s: error: %v\n", r.path, r.err)
			continue
		}
		for _, p := range r.preds {
			fmt.Printf("%s: %s (%.4f)\n", r.path, p.Label, p.Confidence)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func classifyFile(ctx context.Context, session *classifier.Session, path string) ([]classifier.Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return session.Predict(ctx, img).Await(ctx)
}
