package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically drops expired jobs from a Store.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	done     chan struct{}
	once     sync.Once
}

// NewSweeper creates a sweeper; interval defaults to one minute.
func NewSweeper(store *Store, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With(zap.String("component", "sweeper")),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("sweeper started", zap.Duration("interval", s.interval), zap.Duration("ttl", s.store.TTL()))
}

// Stop stops the loop and waits for it to exit. Safe to call more than once.
func (s *Sweeper) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.logger.Info("expired email jobs removed", zap.Int("removed", n))
			}
		}
	}
}
