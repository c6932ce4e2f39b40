package jobs

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/email"
	"github.com/NastasiaHalabi/CertificateGenerator/metrics"
)

// Task is one queued email, bound to its report row.
type Task struct {
	Row     int
	Message email.Message
}

// Runner sends each submitted job on its own goroutine, strictly in row order.
type Runner struct {
	ctx    context.Context
	store  *Store
	sender email.Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewRunner creates a runner. ctx bounds every send; once it is cancelled the
// remaining rows of running jobs fail with the context error.
func NewRunner(ctx context.Context, store *Store, sender email.Sender, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		ctx:    ctx,
		store:  store,
		sender: sender,
		logger: logger.With(zap.String("component", "runner")),
	}
}

// Submit starts the worker for job. Tasks whose row is not queued are ignored.
func (r *Runner) Submit(job *Job, tasks []Task) {
	if job.Done() {
		return
	}
	metrics.EmailJobsActive.Inc()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer metrics.EmailJobsActive.Dec()
		r.run(job, tasks)
	}()
}

func (r *Runner) run(job *Job, tasks []Task) {
	log := r.logger.With(zap.String("job_id", job.ID))
	for _, t := range tasks {
		err := r.sender.Send(r.ctx, t.Message)
		if err != nil {
			job.Resolve(t.Row, StatusFailed, err.Error())
			metrics.EmailFailures.Inc()
			log.Warn("email failed",
				zap.Int("row", t.Row),
				zap.String("to", strings.Join(t.Message.To, ", ")),
				zap.Error(err),
			)
			continue
		}
		job.Resolve(t.Row, StatusSent, "")
		metrics.EmailsSent.Inc()
	}

	// 未提交任务的排队行按失败处理，保证计数闭合
	for _, q := range job.Queued() {
		job.Resolve(q.Row, StatusFailed, "not dispatched")
	}
	r.store.Finalize(job)
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
