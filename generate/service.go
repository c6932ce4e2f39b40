package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/binding"
	"github.com/NastasiaHalabi/CertificateGenerator/config"
	"github.com/NastasiaHalabi/CertificateGenerator/email"
	"github.com/NastasiaHalabi/CertificateGenerator/jobs"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
	"github.com/NastasiaHalabi/CertificateGenerator/metrics"
	"github.com/NastasiaHalabi/CertificateGenerator/pdfops"
	"github.com/NastasiaHalabi/CertificateGenerator/renderer"
)

const missingEmail = "Missing email"

// Service runs the generation pipeline. Sender, Jobs and Runner may be nil
// when email is not configured.
type Service struct {
	Renderer renderer.Renderer
	Jobs     *jobs.Store
	Runner   *jobs.Runner
	Sender   email.Sender
	Logger   *zap.Logger
	MaxRows  int
}

func (s *Service) maxRows() int {
	if s.MaxRows <= 0 || s.MaxRows > config.HardMaxRows {
		return config.HardMaxRows
	}
	return s.MaxRows
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// EmailEnabled reports whether the service can dispatch email jobs.
func (s *Service) EmailEnabled() bool {
	return s.Sender != nil && s.Jobs != nil && s.Runner != nil
}

// Generate assembles the batch once, derives the requested outputs and, when
// asked, creates and submits the email job before returning.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	tpl, mime, err := validate(&req, s.maxRows())
	if err != nil {
		metrics.GenerationFailures.WithLabelValues("validation").Inc()
		return nil, err
	}
	opts := req.Options
	if opts.SendEmail && !s.EmailEnabled() {
		metrics.GenerationFailures.WithLabelValues("email_not_configured").Inc()
		return nil, ErrEmailNotConfigured
	}
	log := s.logger().With(zap.Int("rows", len(req.Rows)), zap.String("format", string(opts.OutputFormat)))

	start := time.Now()
	doc, err := s.Renderer.Assemble(ctx, renderer.AssembleInput{
		Template:     tpl,
		MimeHint:     mime,
		Width:        req.TemplateWidth,
		Height:       req.TemplateHeight,
		Variables:    req.Variables,
		Rows:         req.Rows,
		IncludeIndex: opts.IncludeIndex,
		Meta:         documentMeta(opts),
	})
	if err != nil {
		metrics.GenerationFailures.WithLabelValues("render").Inc()
		return nil, fmt.Errorf("assemble certificates: %w", err)
	}
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	metrics.CertificatesGenerated.Add(float64(doc.Pages))

	resp := &Response{}
	var pages [][]byte
	if opts.OutputFormat.Individual() || opts.SendEmail {
		if pages, err = pdfops.ExtractAll(doc.Bytes); err != nil {
			metrics.GenerationFailures.WithLabelValues("extract").Inc()
			return nil, fmt.Errorf("split certificates: %w", err)
		}
	}
	if opts.OutputFormat.Individual() {
		resp.Individual = make([]File, len(pages))
		for i, p := range pages {
			resp.Individual[i] = File{Filename: IndividualFilename(opts, req.Rows[i], i), Data: p}
		}
	}
	if opts.OutputFormat.Merged() {
		resp.Merged = &File{Filename: MergedFilename(opts), Data: doc.Bytes}
	}

	if opts.SendEmail {
		job, err := s.dispatch(opts, req.Rows, pages)
		if err != nil {
			return nil, err
		}
		resp.EmailJobID = job.ID
	}

	log.Info("certificates generated",
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.Bytes)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("email_job", resp.EmailJobID),
	)
	return resp, nil
}

// PlanEmails 计算每行的状态项与待发送任务：无收件人记为 skipped，地址非法记为 failed。
func PlanEmails(opts *Options, rows []layout.Row, pages [][]byte) ([]jobs.StatusEntry, []jobs.Task) {
	subject := opts.EmailSubject
	if strings.TrimSpace(subject) == "" {
		subject = email.DefaultSubject
	}
	body := opts.EmailBody
	if strings.TrimSpace(body) == "" {
		body = email.DefaultBody
	}
	subjectTpl, bodyTpl := binding.Compile(subject), binding.Compile(body)
	cc, bcc := email.ParseRecipients(opts.EmailCc), email.ParseRecipients(opts.EmailBcc)

	statuses := make([]jobs.StatusEntry, 0, len(rows))
	var tasks []jobs.Task
	for i, row := range rows {
		n := i + 1
		recipients := Recipients(opts, row)
		if len(recipients) == 0 {
			statuses = append(statuses, jobs.StatusEntry{Row: n, Status: jobs.StatusSkipped, Error: missingEmail})
			continue
		}
		joined := strings.Join(recipients, ", ")
		if err := email.ValidateRecipients(recipients); err != nil {
			statuses = append(statuses, jobs.StatusEntry{Row: n, Email: joined, Status: jobs.StatusFailed, Error: err.Error()})
			continue
		}
		statuses = append(statuses, jobs.StatusEntry{Row: n, Email: joined, Status: jobs.StatusQueued})
		tasks = append(tasks, jobs.Task{
			Row: n,
			Message: email.Message{
				To:         recipients,
				Cc:         cc,
				Bcc:        bcc,
				Subject:    subjectTpl.Execute(row),
				Body:       bodyTpl.Execute(row),
				Attachment: &email.Attachment{Filename: IndividualFilename(opts, row, i), Data: pages[i]},
			},
		})
	}
	return statuses, tasks
}

func (s *Service) dispatch(opts *Options, rows []layout.Row, pages [][]byte) (*jobs.Job, error) {
	statuses, tasks := PlanEmails(opts, rows, pages)
	for _, st := range statuses {
		if st.Status == jobs.StatusSkipped {
			metrics.EmailsSkipped.Inc()
		}
	}
	job, err := s.Jobs.Create(statuses, jobs.ReportFilename(opts.Filename))
	if err != nil {
		return nil, fmt.Errorf("create email job: %w", err)
	}
	s.Runner.Submit(job, tasks)
	return job, nil
}

func documentMeta(opts *Options) layout.DocumentMeta {
	title := opts.Filename
	if title == "" {
		title = "Certificates"
	}
	return layout.DocumentMeta{Title: title, Creator: "CertificateGenerator"}
}
