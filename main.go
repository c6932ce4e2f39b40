package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/config"
	"github.com/NastasiaHalabi/CertificateGenerator/email"
	"github.com/NastasiaHalabi/CertificateGenerator/fonts"
	"github.com/NastasiaHalabi/CertificateGenerator/generate"
	"github.com/NastasiaHalabi/CertificateGenerator/jobs"
	canvasrenderer "github.com/NastasiaHalabi/CertificateGenerator/renderer/canvas"
)

var (
	verbose bool
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "certgen",
	Short:         "Batch certificate PDF generator",
	Long:          `certgen fills a template image with per-row text and produces certificate PDFs, optionally emailing each one.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "certgen version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "开发模式日志（debug 级别）")
	rootCmd.AddCommand(serveCmd, generateCmd, mergeCmd, versionCmd)
}

// newLogger 服务端使用 JSON 生产日志，命令行 -v 时使用开发日志。
func newLogger(production bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	if production {
		return zap.NewProduction()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func setMaxProcs(logger *zap.Logger) func() {
	undo, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}
	return undo
}

// fontProvider 字体目录优先，其次内置 Go 字体。
func fontProvider(dir string) (fonts.Provider, error) {
	if dir == "" {
		return fonts.Builtin{}, nil
	}
	d, err := fonts.NewDir(dir)
	if err != nil {
		return nil, err
	}
	return fonts.Chain{d, fonts.Builtin{}}, nil
}

// services 是一次进程内共享的生成与邮件组件。
type services struct {
	generator *generate.Service
	renderer  *canvasrenderer.Renderer
	store     *jobs.Store
	runner    *jobs.Runner
}

func newServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services, error) {
	provider, err := fontProvider(cfg.FontDir)
	if err != nil {
		return nil, fmt.Errorf("font directory: %w", err)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: provider, Logger: logger})
	store := jobs.NewStore(jobs.StoreConfig{TTL: cfg.EmailJobTTL, MaxJobs: cfg.EmailMaxJobs}, logger)

	svc := &services{
		generator: &generate.Service{Renderer: r, Jobs: store, Logger: logger, MaxRows: cfg.MaxRows},
		renderer:  r,
		store:     store,
	}
	if cfg.EmailConfigured() {
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host:          cfg.SMTPServer,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUser,
			Password:      cfg.SMTPPassword,
			From:          cfg.MailFrom,
			RateLimit:     cfg.EmailRateLimit,
			RetryAttempts: cfg.EmailRetryAttempts,
		}, logger)
		svc.runner = jobs.NewRunner(ctx, store, sender, logger)
		svc.generator.Sender = sender
		svc.generator.Runner = svc.runner
	} else {
		logger.Info("SMTP not configured, email dispatch disabled")
	}
	return svc, nil
}

// wait 阻塞直到所有邮件任务结束。
func (s *services) wait() {
	if s.runner != nil {
		s.runner.Wait()
	}
}
