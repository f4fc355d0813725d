package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// CategoryCleaner removes categories no book uses.
type CategoryCleaner interface {
	DeleteUnusedCategories(protected string) (int64, error)
}

// CategoryCleanupScheduler periodically deletes unused categories, keeping
// the protected sentinel.
type CategoryCleanupScheduler struct {
	cleaner   CategoryCleaner
	protected string
	schedule  string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	lastRun   *time.Time
	lastCount int64
}

// NewCategoryCleanupScheduler creates a scheduler for the given cron schedule.
func NewCategoryCleanupScheduler(cleaner CategoryCleaner, protected, schedule string) *CategoryCleanupScheduler {
	return &CategoryCleanupScheduler{
		cleaner:   cleaner,
		protected: protected,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops when
// ctx is cancelled.
func (s *CategoryCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule category cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	slog.Info("category cleanup scheduler started", "schedule", s.schedule, "next_run", s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the cron loop.
func (s *CategoryCleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	stopped := s.cron.Stop()
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	// A job in flight takes the lock to record its result.
	<-stopped.Done()

	slog.Info("category cleanup scheduler stopped")
}

// GetNextRunTime returns the next scheduled run, or nil when stopped.
func (s *CategoryCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// IsRunning returns whether the scheduler is active.
func (s *CategoryCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns when the job last ran and how many categories it removed.
func (s *CategoryCleanupScheduler) LastRun() (*time.Time, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastCount
}

// RunNow performs one cleanup synchronously.
func (s *CategoryCleanupScheduler) RunNow() (int64, error) {
	deleted, err := s.cleaner.DeleteUnusedCategories(s.protected)
	if err != nil {
		slog.Error("category cleanup failed", "error", err)
		return 0, err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRun = &now
	s.lastCount = deleted
	s.mu.Unlock()

	slog.Info("category cleanup finished", "deleted", deleted)
	return deleted, nil
}
