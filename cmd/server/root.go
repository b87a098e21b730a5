package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
	"github.com/Brownie44l1/image-classifier/internal/config"
	"github.com/Brownie44l1/image-classifier/internal/logger"
	"github.com/Brownie44l1/image-classifier/internal/model"
	"github.com/Brownie44l1/image-classifier/internal/router"
	"github.com/Brownie44l1/image-classifier/internal/video"
)

// Version is the application version.
const Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "server",
	Short:   "Serve image classification over HTTP",
	Version: Version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), configPath)
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
}

func serve(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	name, err := classifier.ParseModelName(cfg.Model.Name)
	if err != nil {
		return err
	}
	loader := model.NewLoader(name, cfg.Model.Dir, cfg.Model.SharedLibraryPath, log)
	defer loader.Close()

	args := []any{}
	if cfg.Video.Device != "" {
		capture, err := video.Open(cfg.Video.Device, log)
		if err != nil {
			return err
		}
		defer capture.Close()
		args = append(args, capture)
	}
	args = append(args, cfg.Model.Options())

	// With a callback the factory hands back the live session right away, so
	// the server can start while the model loads and report progress on /ready.
	args = append(args, classifier.Callback(func(_ []classifier.Prediction, err error) {
		if err != nil {
			log.Error("Model failed to load", zap.Error(err))
			return
		}
		log.Info("Model ready")
	}))

	factory := classifier.NewFactory(classifier.Registry{name: loader}, log)
	pending, err := factory.New(cfg.Model.Name, args...)
	if err != nil {
		return err
	}
	session, err := pending.Await(ctx)
	if err != nil {
		return err
	}

	r := router.Setup(session, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("address", addr),
			zap.String("model", cfg.Model.Name),
			zap.Bool("video", cfg.Video.Device != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
