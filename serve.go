package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/api"
	"github.com/NastasiaHalabi/CertificateGenerator/config"
	"github.com/NastasiaHalabi/CertificateGenerator/jobs"
	"github.com/NastasiaHalabi/CertificateGenerator/metrics"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the generation API and a separate Prometheus metrics listener. Settings come from the environment.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "API 端口（覆盖 PORT）")
}

func runServe(cmd *cobra.Command, args []string) error {
	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := newLogger(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer setMaxProcs(logger)()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Generation + email jobs
	// ------------------------------------------------
	// 邮件发送使用独立的 context：收到信号后先停止接收请求，再让在途任务发完。
	sendCtx, cancelSends := context.WithCancel(context.Background())
	defer cancelSends()

	svc, err := newServices(sendCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise services", zap.Error(err))
		return err
	}

	sweeper := jobs.NewSweeper(svc.store, cfg.EmailJobSweep, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	server := api.NewServer(svc.generator, svc.store, api.Config{
		ListenAddr:   ":" + cfg.Port,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, logger)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("api server error", zap.Error(err))
		return err
	}

	logger.Info("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	// 等待在途邮件任务；超时后取消剩余发送
	done := make(chan struct{})
	go func() {
		svc.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("email jobs still running at shutdown, cancelling")
		cancelSends()
		<-done
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
	return nil
}
