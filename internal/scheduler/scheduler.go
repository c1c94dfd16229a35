package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dripfeed/internal/delivery"
	"dripfeed/internal/logging"
	"dripfeed/internal/progress"
)

// Deliverer is the slice of the delivery pipeline the scheduler drives.
type Deliverer interface {
	Deliver(ctx context.Context, chatID string, lessonIndex int) delivery.Result
}

// Options configures the scheduler trigger and pacing.
type Options struct {
	// CronExpr is the standard five-field cron expression for the daily tick.
	CronExpr string
	// Timezone is the IANA zone the expression is evaluated in.
	Timezone string
	// SendDelay paces consecutive subscribers within one run.
	SendDelay time.Duration
	// TotalLessons bounds the due-subscriber filter.
	TotalLessons int
}

// Scheduler fires a delivery run once per day and walks every due
// subscriber sequentially.
type Scheduler struct {
	store     progress.Store
	deliverer Deliverer
	logger    *slog.Logger
	opts      Options

	mu      sync.Mutex
	running bool
	cron    *cron.Cron

	// runMu serializes delivery runs so a manual RunOnce can never
	// interleave with a scheduled tick.
	runMu sync.Mutex
}

// RunSummary reports what one scheduling pass did.
type RunSummary struct {
	Due       int
	Delivered int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// New constructs a scheduler. The cron expression and timezone must already
// be validated by config.
func New(store progress.Store, deliverer Deliverer, logger *slog.Logger, opts Options) *Scheduler {
	return &Scheduler{
		store:     store,
		deliverer: deliverer,
		logger:    logging.NewComponentLogger(logger, "scheduler"),
		opts:      opts,
	}
}

// Start schedules the daily tick. It returns an error when already running
// or when the trigger configuration is unusable.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	location, err := time.LoadLocation(s.opts.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.opts.Timezone, err)
	}

	runner := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(newCronLogger(s.logger))),
	)
	if _, err := runner.AddFunc(s.opts.CronExpr, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.opts.CronExpr, err)
	}

	runner.Start()
	s.cron = runner
	s.running = true
	s.logger.Info("scheduler started",
		logging.String("cron", s.opts.CronExpr),
		logging.String("timezone", s.opts.Timezone),
	)
	return nil
}

// Stop halts the trigger and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	runner := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	<-runner.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce executes a single scheduling pass: snapshot the due list, deliver
// to each subscriber in order, advance progress on success, and keep going
// past individual failures. Runs are fully serialized.
func (s *Scheduler) RunOnce(ctx context.Context) RunSummary {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	logger := s.logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	due, err := s.store.ListDue(ctx, s.opts.TotalLessons)
	if err != nil {
		logger.Error("list due subscribers failed", logging.Error(err))
		return RunSummary{Duration: time.Since(start)}
	}

	summary := RunSummary{Due: len(due)}
	logger.Info("delivery run started", logging.Int("due", len(due)))

	for i, record := range due {
		if ctx.Err() != nil {
			logger.Warn("delivery run cancelled",
				logging.Int("remaining", len(due)-i),
			)
			break
		}

		result := s.deliverer.Deliver(ctx, record.ChatID, record.NextLesson)
		switch result.Outcome {
		case delivery.OutcomeDelivered:
			if err := s.store.Advance(ctx, record.ChatID, result.Lesson); err != nil {
				// The lesson went out but the store write failed; the
				// subscriber will get the same lesson again next tick.
				logger.Error("advance failed after delivery",
					logging.Error(err),
					logging.String(logging.FieldChatID, record.ChatID),
					logging.Int(logging.FieldLesson, result.Lesson),
				)
				summary.Failed++
			} else {
				summary.Delivered++
			}
		case delivery.OutcomeFailed:
			summary.Failed++
			logger.Warn("delivery failed, subscriber stays due",
				logging.Error(result.Err),
				logging.String(logging.FieldChatID, record.ChatID),
				logging.Int(logging.FieldLesson, record.NextLesson),
			)
		default:
			summary.Skipped++
			logger.Warn("delivery skipped",
				logging.Error(result.Err),
				logging.String(logging.FieldChatID, record.ChatID),
				logging.Int(logging.FieldLesson, record.NextLesson),
			)
		}

		if s.opts.SendDelay > 0 && i < len(due)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.SendDelay):
			}
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("delivery run finished",
		logging.Int("due", summary.Due),
		logging.Int("delivered", summary.Delivered),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	return summary
}
