// Package serve implements the HTTP server command.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sonory/soundscape-go/internal/analyzer"
	"github.com/sonory/soundscape-go/internal/api"
	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/logging"
	"github.com/sonory/soundscape-go/internal/myaudio"
	"github.com/sonory/soundscape-go/internal/observability"
	"github.com/sonory/soundscape-go/internal/soundscape"
	"github.com/sonory/soundscape-go/internal/yamnet"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis HTTP server",
		Long:  `Initialize the classifier model and serve the analysis API over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	cmd.Flags().StringVar(&settings.WebServer.Port, "port", settings.WebServer.Port, "HTTP listen port")

	return cmd
}

func runServer(settings *conf.Settings) error {
	log := logging.ForService("main")
	if log == nil {
		log = slog.Default()
	}

	if settings.Main.Log.Enabled && settings.Main.Log.Path != "" {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		fileLog, closeLog, err := logging.NewFileLogger(settings.Main.Log.Path, settings.Main.Name, level)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			_ = closeLog()
		}()
		log = fileLog
	}

	if !conf.IsFfmpegAvailable() {
		log.Warn("ffmpeg not found in PATH, only WAV and FLAC inputs will decode")
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// The model must be ready before the server accepts analysis traffic
	model := yamnet.New(settings)
	if err := model.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize model: %w", err)
	}

	processor := myaudio.NewProcessor(settings)
	defer processor.Close()

	taxonomy := soundscape.DefaultTaxonomy(settings.Soundscape.MinScore)

	anlz := analyzer.New(model, processor, taxonomy, settings.Model.TopK)
	anlz.SetMetrics(metrics.Analyzer)

	controller := api.New(settings, anlz, metrics)

	errChan := make(chan error, 1)
	go func() {
		errChan <- controller.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := controller.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
