// Package jobs tracks asynchronous certificate email dispatch: an in-memory job
// table with expiry, a single-worker runner per job, and the final CSV report.
package jobs

import (
	"sync"
	"time"
)

// Status is the delivery state of one row.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StatusEntry is the per-row line of the email report. Row is 1-based.
type StatusEntry struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Status Status `json:"status"`
	Error  string `json:"error"`
}

// Report is the finished CSV report, base64 encoded.
type Report struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

// Snapshot 是供外部读取的任务进度副本；报告仅在任务完成后出现。
type Snapshot struct {
	JobID   string  `json:"jobId"`
	Total   int     `json:"total"`
	Sent    int     `json:"sent"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Done    bool    `json:"done"`
	Report  *Report `json:"report,omitempty"`
}

// Job is one email dispatch. All fields are guarded by mu; readers use Snapshot.
type Job struct {
	ID        string
	CreatedAt time.Time

	mu             sync.Mutex
	total          int
	sent           int
	failed         int
	skipped        int
	done           bool
	statuses       []StatusEntry
	reportFilename string
	report         *Report
	expiresAt      time.Time
}

// newJob 统计初始计数：skipped 与已判定 failed 的行在创建时计入。
func newJob(id string, statuses []StatusEntry, reportFilename string, now time.Time) *Job {
	j := &Job{
		ID:             id,
		CreatedAt:      now,
		total:          len(statuses),
		statuses:       append([]StatusEntry(nil), statuses...),
		reportFilename: reportFilename,
	}
	for _, s := range j.statuses {
		switch s.Status {
		case StatusSkipped:
			j.skipped++
		case StatusFailed:
			j.failed++
		}
	}
	return j
}

// Resolve records the outcome of a queued row. Only queued rows change; a
// second resolution of the same row is ignored.
func (j *Job) Resolve(row int, status Status, errMsg string) bool {
	if status != StatusSent && status != StatusFailed {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.statuses {
		e := &j.statuses[i]
		if e.Row != row || e.Status != StatusQueued {
			continue
		}
		e.Status = status
		e.Error = errMsg
		if status == StatusSent {
			j.sent++
		} else {
			j.failed++
		}
		return true
	}
	return false
}

// Queued returns the queued rows in report order.
func (j *Job) Queued() []StatusEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []StatusEntry
	for _, s := range j.statuses {
		if s.Status == StatusQueued {
			out = append(out, s)
		}
	}
	return out
}

// finalize 生成报告并标记完成，过期时间从此刻起算。
func (j *Job) finalize(now time.Time, ttl time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done && j.report != nil {
		return
	}
	j.report = &Report{Filename: j.reportFilename, Data: EncodeReport(j.statuses)}
	j.done = true
	j.expiresAt = now.Add(ttl)
}

// Snapshot returns a consistent copy of the counters.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Snapshot{
		JobID:   j.ID,
		Total:   j.total,
		Sent:    j.sent,
		Failed:  j.failed,
		Skipped: j.skipped,
		Done:    j.done,
	}
	if j.done && j.report != nil {
		r := *j.report
		s.Report = &r
	}
	return s
}

// Statuses returns a copy of the per-row entries.
func (j *Job) Statuses() []StatusEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]StatusEntry(nil), j.statuses...)
}

// Done reports whether the job has finished.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

func (j *Job) expired(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done && !j.expiresAt.IsZero() && !now.Before(j.expiresAt)
}
