package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrJobNotFound indicates an unknown or expired job id.
	ErrJobNotFound = errors.New("email job not found")

	// ErrStoreFull indicates the job table is at capacity and every job is still running.
	ErrStoreFull = errors.New("too many email jobs in progress")
)

// DefaultTTL is how long a finished job stays readable.
const DefaultTTL = 30 * time.Minute

// StoreConfig configures the job table.
type StoreConfig struct {
	TTL     time.Duration
	MaxJobs int // <=0 表示不限
}

// Store is the in-memory job table keyed by UUIDv4.
type Store struct {
	cfg    StoreConfig
	logger *zap.Logger
	now    func() time.Time

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates an empty job table.
func NewStore(cfg StoreConfig, logger *zap.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "jobs")),
		now:    time.Now,
		jobs:   map[string]*Job{},
	}
}

// TTL returns the retention period of finished jobs.
func (s *Store) TTL() time.Duration { return s.cfg.TTL }

// Create registers a job over statuses. A job with nothing queued is finished
// immediately and starts its expiry.
func (s *Store) Create(statuses []StatusEntry, reportFilename string) (*Job, error) {
	now := s.now()
	job := newJob(uuid.New().String(), statuses, reportFilename, now)

	s.mu.Lock()
	if s.cfg.MaxJobs > 0 && len(s.jobs) >= s.cfg.MaxJobs {
		if !s.evictOldestDoneLocked() {
			s.mu.Unlock()
			return nil, ErrStoreFull
		}
	}
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if len(job.Queued()) == 0 {
		job.finalize(now, s.cfg.TTL)
	}
	s.logger.Info("email job created",
		zap.String("job_id", job.ID),
		zap.Int("total", job.total),
		zap.Int("skipped", job.skipped),
		zap.Int("failed", job.failed),
	)
	return job, nil
}

// 满表时淘汰最早创建且已完成的任务；全部在运行时返回 false。
func (s *Store) evictOldestDoneLocked() bool {
	var oldest *Job
	for _, j := range s.jobs {
		if !j.Done() {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	if oldest == nil {
		return false
	}
	delete(s.jobs, oldest.ID)
	s.logger.Debug("evicted finished job", zap.String("job_id", oldest.ID))
	return true
}

// Get returns the job or ErrJobNotFound. Expired jobs are treated as absent
// even before the sweeper removes them.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok || job.expired(s.now()) {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Finalize marks job done, builds its report and starts the expiry clock.
func (s *Store) Finalize(job *Job) {
	job.finalize(s.now(), s.cfg.TTL)
	snap := job.Snapshot()
	s.logger.Info("email job finished",
		zap.String("job_id", job.ID),
		zap.Int("sent", snap.Sent),
		zap.Int("failed", snap.Failed),
		zap.Int("skipped", snap.Skipped),
	)
}

// Delete removes a job; unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Active returns the number of unfinished jobs.
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, j := range s.jobs {
		if !j.Done() {
			n++
		}
	}
	return n
}

// Sweep removes every expired job and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		if j.expired(now) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
