package daemon_test

import (
	"context"
	"testing"

	"dripfeed/internal/bot"
	"dripfeed/internal/daemon"
	"dripfeed/internal/delivery"
	"dripfeed/internal/logging"
	"dripfeed/internal/progress"
	"dripfeed/internal/scheduler"
	"dripfeed/internal/telegram"
	"dripfeed/internal/testsupport"
)

type idleAPI struct{}

func (idleAPI) GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (idleAPI) SendMessage(ctx context.Context, chatID, text string) error { return nil }

type noopDeliverer struct{}

func (noopDeliverer) Deliver(ctx context.Context, chatID string, lessonIndex int) delivery.Result {
	return delivery.Result{Outcome: delivery.OutcomeDelivered, Lesson: lessonIndex}
}

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)

	store := progress.NewMemory()
	sched := scheduler.New(store, noopDeliverer{}, logging.NewNop(), scheduler.Options{
		CronExpr:     cfg.Schedule.Cron,
		Timezone:     cfg.Schedule.Timezone,
		TotalLessons: 1,
	})
	b := bot.New(idleAPI{}, store, noopDeliverer{}, logging.NewNop(), bot.Options{
		PollTimeout:  1,
		TotalLessons: 1,
	})

	d, err := daemon.New(cfg, store, logging.NewNop(), sched, b)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	d := newDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Status().Running {
		t.Error("Status.Running = false after Start")
	}
	if err := d.Start(context.Background()); err == nil {
		t.Error("second Start on the same daemon must fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Error("Status.Running = true after Stop")
	}
	// Stop is idempotent.
	d.Stop()

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil); err == nil {
		t.Error("New with nil dependencies must fail")
	}
}
