package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/annualtables/internal/config"
	"github.com/sanspareilsmyn/annualtables/internal/logging"
	"github.com/sanspareilsmyn/annualtables/internal/pipeline"
	"github.com/sanspareilsmyn/annualtables/internal/server"
)

func newRunCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Consume timesteps and publish the annual tables when the run ends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *configFile)
		},
	}
}

func run(parent context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configFile, err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded successfully", "path", configFile, "level", cfg.Log.Level)

	store, registry, err := config.BuildRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build tables: %w", err)
	}
	pipe, err := pipeline.New(cfg, store, registry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	// Handle Graceful Shutdown
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case sig := <-signals:
			sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	var wg sync.WaitGroup
	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if cfg.Metrics.Enabled {
		srv := server.New(cfg.Metrics.ListenAddr, server.NewRouter(pipe.Timesteps), logger.Named("server"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(serverCtx); err != nil {
				sugar.Errorw("Metrics server stopped with error", zap.Error(err))
			}
		}()
	}

	sugar.Info("Starting pipeline...")
	runErr := pipe.Run(ctx)
	stopServer()
	wg.Wait()

	finalLogLevel := zapcore.InfoLevel
	shutdownReason := "gracefully"
	finalErrorField := zap.Skip()

	switch {
	case runErr == nil && ctx.Err() != nil:
		shutdownReason = "on signal, no report published"
	case runErr == nil:
	default:
		shutdownReason = "due to error"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
	}
	logger.Log(finalLogLevel, fmt.Sprintf("Pipeline shutdown %s.", shutdownReason),
		zap.String("reason", shutdownReason),
		zap.Int64("timesteps", pipe.Timesteps()),
		finalErrorField,
	)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
