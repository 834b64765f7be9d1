// Package sweeper periodically deletes expired revocation entries, refresh
// tokens and password reset tokens.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"github.com/go-co-op/gocron"
)

// Result counts the rows removed by one pass.
type Result struct {
	Blacklist     int64
	RefreshTokens int64
	ResetTokens   int64
}

type Sweeper struct {
	repos    repomanager.RepositoryManager
	interval time.Duration
	log      logging.Logger
	now      timex.Clock

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

type Option func(*Sweeper)

func WithClock(now timex.Clock) Option {
	return func(s *Sweeper) { s.now = now }
}

func New(repos repomanager.RepositoryManager, interval time.Duration, log logging.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		repos:    repos,
		interval: interval,
		log:      log.With("module", "sweeper"),
		now:      timex.SystemClock,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunOnce performs a single pass. Every store is attempted; failures are
// joined.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	now := s.now()
	db := s.repos.Conn()

	var res Result
	var errs []error

	n, err := s.repos.Blacklist(db).DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("blacklist: %w", err))
	}
	res.Blacklist = n

	n, err = s.repos.RefreshTokens(db).DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("refresh tokens: %w", err))
	}
	res.RefreshTokens = n

	n, err = s.repos.ResetTokens(db).DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("reset tokens: %w", err))
	}
	res.ResetTokens = n

	return res, errors.Join(errs...)
}

func (s *Sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error(ctx, "sweep failed", "error", err)
	}
	s.log.Info(ctx, "sweep done",
		"blacklist", res.Blacklist,
		"refresh_tokens", res.RefreshTokens,
		"reset_tokens", res.ResetTokens,
	)
}

// Start schedules RunOnce every interval, first run one interval from now.
// Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}

	sch := gocron.NewScheduler(time.UTC)
	sch.SingletonModeAll()
	if _, err := sch.Every(s.interval).WaitForSchedule().Do(s.tick); err != nil {
		return err
	}
	sch.StartAsync()
	s.scheduler = sch
	return nil
}

// Stop halts the schedule. It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
	s.scheduler = nil
}
