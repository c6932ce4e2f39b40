package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/config"
	"github.com/NastasiaHalabi/CertificateGenerator/csvparser"
	"github.com/NastasiaHalabi/CertificateGenerator/generate"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
	"github.com/NastasiaHalabi/CertificateGenerator/project"
	"github.com/NastasiaHalabi/CertificateGenerator/renderer"
)

type generateFlags struct {
	project string
	rows    string
	out     string
	format  string
	index   bool
	debug   string
	email   bool
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render certificates from a project file and a CSV",
	Long: `Render one certificate page per CSV row using the template and variables of a YAML
project file. Individual and merged PDFs are written to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(false)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer setMaxProcs(logger)()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return runGenerate(cmd.Context(), cfg, genFlags, cmd.OutOrStdout(), logger)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.project, "project", "", "项目文件（YAML）")
	f.StringVar(&genFlags.rows, "rows", "", "数据 CSV 文件")
	f.StringVarP(&genFlags.out, "out", "o", "output", "输出目录")
	f.StringVar(&genFlags.format, "format", "", "individual|merged|both（覆盖项目设置）")
	f.BoolVar(&genFlags.index, "index", false, "在每页右下角标注页码")
	f.StringVar(&genFlags.debug, "debug", "", "排版调试 JSON 输出路径")
	f.BoolVar(&genFlags.email, "email", false, "发送邮件（需要 SMTP 配置）")
	generateCmd.MarkFlagRequired("project")
	generateCmd.MarkFlagRequired("rows")
}

// runGenerate 串联项目加载、CSV 解析、生成与落盘。
func runGenerate(ctx context.Context, cfg *config.Config, fl generateFlags, stdout io.Writer, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := project.Load(fl.project)
	if err != nil {
		return err
	}
	if fl.format != "" {
		p.Options.OutputFormat = generate.OutputFormat(fl.format)
	}
	if fl.index {
		p.Options.IncludeIndex = true
	}
	if fl.email {
		p.Options.SendEmail = true
	}

	f, err := os.Open(fl.rows)
	if err != nil {
		return fmt.Errorf("open rows: %w", err)
	}
	table, err := csvparser.ParseRows(f, cfg.MaxRows)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse rows %s: %w", fl.rows, err)
	}

	req, unmapped, err := p.Request(table)
	if err != nil {
		return err
	}
	if len(unmapped) > 0 {
		logger.Warn("variables without a column use their sample text", zap.Strings("variables", unmapped))
	}

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fl.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if fl.debug != "" {
		pages, err := svc.renderer.Plan(ctx, renderer.AssembleInput{
			Width:     req.TemplateWidth,
			Height:    req.TemplateHeight,
			Variables: req.Variables,
			Rows:      req.Rows,
		})
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		if err := layout.WriteDebugJSON(pages, fl.debug); err != nil {
			return fmt.Errorf("write debug json: %w", err)
		}
	}

	resp, err := svc.generator.Generate(ctx, req)
	if err != nil {
		var verr *generate.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid input: %s", verr.Message)
		}
		return err
	}

	files := append([]generate.File(nil), resp.Individual...)
	if resp.Merged != nil {
		files = append(files, *resp.Merged)
	}
	for _, file := range files {
		path := filepath.Join(fl.out, file.Filename)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	fmt.Fprintf(stdout, "已生成 %d 个文件到 %s\n", len(files), fl.out)

	if resp.EmailJobID != "" {
		return writeEmailReport(svc, resp.EmailJobID, fl.out, stdout)
	}
	return nil
}

// writeEmailReport 等待邮件任务完成，并把 CSV 报告写入输出目录。
func writeEmailReport(svc *services, jobID, dir string, stdout io.Writer) error {
	svc.wait()
	job, err := svc.store.Get(jobID)
	if err != nil {
		return err
	}
	snap := job.Snapshot()
	if snap.Report == nil {
		return fmt.Errorf("email job %s finished without a report", jobID)
	}
	data, err := base64.StdEncoding.DecodeString(snap.Report.Data)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, snap.Report.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "邮件：发送 %d，失败 %d，跳过 %d（共 %d）；报告 %s\n",
		snap.Sent, snap.Failed, snap.Skipped, snap.Total, strings.TrimPrefix(path, "./"))
	return nil
}
