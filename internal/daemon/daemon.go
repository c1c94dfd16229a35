package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"dripfeed/internal/bot"
	"dripfeed/internal/config"
	"dripfeed/internal/logging"
	"dripfeed/internal/progress"
	"dripfeed/internal/scheduler"
)

// Daemon composes the scheduler and the bot update loop and enforces
// single-instance execution via a lock file in the log directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     progress.Store
	scheduler *scheduler.Scheduler
	bot       *bot.Bot

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	LockFilePath string
	ProgressPath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store progress.Store, logger *slog.Logger, sched *scheduler.Scheduler, b *bot.Bot) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || sched == nil || b == nil {
		return nil, errors.New("daemon requires config, store, logger, scheduler, and bot")
	}

	lockPath := filepath.Join(cfg.Logging.Dir, "dripfeed.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		scheduler: sched,
		bot:       b,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the scheduler and the
// update loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return errors.New("another dripfeed instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.scheduler.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := d.bot.Start(runCtx); err != nil {
		d.scheduler.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start bot: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the update loop and the scheduler and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.bot.Stop()
	d.scheduler.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the progress store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status reports whether the daemon is running and where its state lives.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		ProgressPath: d.cfg.Progress.Path,
	}
}
